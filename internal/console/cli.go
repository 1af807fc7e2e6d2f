package console

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"bookstore-admin/internal/core/model"
)

const usage = `usage: bookstore-admin <command> [arguments]

commands:
  login    -email E -password P
  register -email E -name N -phone P -password P [-male]
  logout
  list     <entity> [-q keyword] [-sort key]...
  create   <entity> [-data JSON | -file F] [-image F] [-author ID] [-category ID] [-publisher ID]
  edit     <entity> <id> [same flags as create]
  delete   <entity> <id> [-yes]
  compose  -customer ID [-promotion ID] [-payment cash|bank|ewallet] -item BOOK[:QTY]... [-dry-run]
  stats    [-from YYYY-MM-DD] [-to YYYY-MM-DD]
  pick     <entity>

entities: categories authors publishers books customers staffs promotions orders
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type command func(ctx context.Context, app *App, args []string, stdout io.Writer) error

var commands = map[string]command{
	"login":    runLogin,
	"register": runRegister,
	"logout":   runLogout,
	"list":     runList,
	"create":   runCreate,
	"edit":     runEdit,
	"delete":   runDelete,
	"compose":  runCompose,
	"stats":    runStats,
	"pick":     runPick,
}

// Run executes one command line and returns the process exit code.
func Run(ctx context.Context, app *App, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stdout, usage)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
	err := cmd(ctx, app, args[1:], stdout)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInput):
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}
	app.log.Debug("command failed", "command", args[0], "err", err)
	return exitError
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// positional takes n leading arguments, then parses the remaining flags.
func positional(fs *flag.FlagSet, args []string, names ...string) ([]string, error) {
	if len(args) < len(names) {
		return nil, inputErr("%s needs %s", fs.Name(), strings.Join(names, " and "))
	}
	if err := fs.Parse(args[len(names):]); err != nil {
		return nil, inputErr("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return nil, inputErr("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return args[:len(names)], nil
}

func runLogin(ctx context.Context, app *App, args []string, _ io.Writer) error {
	fs := newFlags("login")
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if _, err := positional(fs, args); err != nil {
		return err
	}
	return app.Login(ctx, *email, *password)
}

func runRegister(ctx context.Context, app *App, args []string, _ io.Writer) error {
	fs := newFlags("register")
	var req model.RegisterRequest
	fs.StringVar(&req.Email, "email", "", "")
	fs.StringVar(&req.Fullname, "name", "", "")
	fs.StringVar(&req.Phone, "phone", "", "")
	fs.StringVar(&req.Password, "password", "", "")
	fs.BoolVar(&req.Gender, "male", false, "")
	if _, err := positional(fs, args); err != nil {
		return err
	}
	return app.Register(ctx, req)
}

func runLogout(_ context.Context, app *App, args []string, _ io.Writer) error {
	if _, err := positional(newFlags("logout"), args); err != nil {
		return err
	}
	return app.Logout()
}

func runList(ctx context.Context, app *App, args []string, stdout io.Writer) error {
	fs := newFlags("list")
	keyword := fs.String("q", "", "")
	var sorts stringList
	fs.Var(&sorts, "sort", "")
	pos, err := positional(fs, args, "entity")
	if err != nil {
		return err
	}
	s, err := app.Screen(pos[0])
	if err != nil {
		return err
	}
	return s.List(ctx, stdout, ListOptions{Keyword: *keyword, Sort: sorts})
}

type editFlags struct {
	data, file, image           string
	author, category, publisher string
}

func (f *editFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.data, "data", "", "")
	fs.StringVar(&f.file, "file", "", "")
	fs.StringVar(&f.image, "image", "", "")
	fs.StringVar(&f.author, "author", "", "")
	fs.StringVar(&f.category, "category", "", "")
	fs.StringVar(&f.publisher, "publisher", "", "")
}

func (f *editFlags) input() (EditInput, error) {
	in := EditInput{Image: f.image, Picks: map[model.EntityKind]string{}}
	switch {
	case f.data != "" && f.file != "":
		return in, inputErr("use either -data or -file")
	case f.file != "":
		b, err := os.ReadFile(f.file)
		if err != nil {
			return in, inputErr("%v", err)
		}
		in.Data = b
	default:
		in.Data = []byte(f.data)
	}
	for kind, id := range map[model.EntityKind]string{
		model.KindAuthor:    f.author,
		model.KindCategory:  f.category,
		model.KindPublisher: f.publisher,
	} {
		if id != "" {
			in.Picks[kind] = id
		}
	}
	return in, nil
}

func runCreate(ctx context.Context, app *App, args []string, _ io.Writer) error {
	fs := newFlags("create")
	var ef editFlags
	ef.register(fs)
	pos, err := positional(fs, args, "entity")
	if err != nil {
		return err
	}
	s, err := app.Screen(pos[0])
	if err != nil {
		return err
	}
	in, err := ef.input()
	if err != nil {
		return err
	}
	return s.Create(ctx, in)
}

func runEdit(ctx context.Context, app *App, args []string, _ io.Writer) error {
	fs := newFlags("edit")
	var ef editFlags
	ef.register(fs)
	pos, err := positional(fs, args, "entity", "id")
	if err != nil {
		return err
	}
	s, err := app.Screen(pos[0])
	if err != nil {
		return err
	}
	in, err := ef.input()
	if err != nil {
		return err
	}
	return s.Edit(ctx, pos[1], in)
}

func runDelete(ctx context.Context, app *App, args []string, stdout io.Writer) error {
	fs := newFlags("delete")
	yes := fs.Bool("yes", false, "")
	pos, err := positional(fs, args, "entity", "id")
	if err != nil {
		return err
	}
	s, err := app.Screen(pos[0])
	if err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintf(stdout, "delete %s %s? re-run with -yes to confirm\n", s.Kind(), pos[1])
		return nil
	}
	return s.Delete(ctx, pos[1])
}

func runCompose(ctx context.Context, app *App, args []string, stdout io.Writer) error {
	fs := newFlags("compose")
	var in OrderInput
	fs.StringVar(&in.Customer, "customer", "", "")
	fs.StringVar(&in.Promotion, "promotion", "", "")
	fs.StringVar(&in.Payment, "payment", "", "")
	fs.BoolVar(&in.DryRun, "dry-run", false, "")
	var items stringList
	fs.Var(&items, "item", "")
	if _, err := positional(fs, args); err != nil {
		return err
	}
	in.Items = items
	return app.Orders().Compose(ctx, stdout, in)
}

func runStats(ctx context.Context, app *App, args []string, stdout io.Writer) error {
	fs := newFlags("stats")
	from := fs.String("from", "", "")
	to := fs.String("to", "", "")
	if _, err := positional(fs, args); err != nil {
		return err
	}
	return app.Statistics().Show(ctx, stdout, *from, *to)
}

func runPick(ctx context.Context, app *App, args []string, stdout io.Writer) error {
	pos, err := positional(newFlags("pick"), args, "entity")
	if err != nil {
		return err
	}
	return app.Pick(ctx, stdout, pos[0])
}
