package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"bookstore-admin/internal/adapter"
	"bookstore-admin/internal/core"
	"bookstore-admin/internal/core/model"
)

type AppConfig struct {
	Admin *adapter.Gateway
	Auth  *adapter.Gateway
	Store core.CredentialStore
	// Notifier defaults to discarding messages.
	Notifier   core.Notifier
	Strictness core.Strictness
	Logger     *slog.Logger
	// ImageBase resolves relative cover paths; defaults to the admin URL.
	ImageBase string
}

// App wires every screen of the back office onto the gateways.
type App struct {
	screens map[model.EntityKind]Screen
	pickers map[model.EntityKind]func(ctx context.Context, w io.Writer) error
	orders  *OrderScreen
	stats   *StatisticsScreen
	session *core.AuthSession
	notify  core.Notifier
	log     *slog.Logger
}

func NewApp(cfg AppConfig) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = Notifier{W: io.Discard}
	}
	imageBase := cfg.ImageBase
	if imageBase == "" {
		imageBase = cfg.Admin.BaseURL
	}

	categories := adapter.NewResource[model.Category](cfg.Admin, adapter.PathCategories)
	authors := adapter.NewResource[model.Author](cfg.Admin, adapter.PathAuthors)
	publishers := adapter.NewResource[model.Publisher](cfg.Admin, adapter.PathPublishers)
	books := adapter.NewBookResource(cfg.Admin)
	customers := adapter.NewResource[model.Customer](cfg.Admin, adapter.PathCustomers)
	staffs := adapter.NewResource[model.Staff](cfg.Admin, adapter.PathStaffs)
	promotions := adapter.NewResource[model.Promotion](cfg.Admin, adapter.PathPromotions)
	orders := adapter.NewOrderResource(cfg.Admin)

	orderList := newScreenWith(model.KindOrder, orders.Resource, orders.StatusWriter(), orders, orderFields(), notify, logger)
	a := &App{
		orders: &OrderScreen{
			entityScreen: orderList,
			composer: core.NewOrderComposer(core.ComposerConfig{
				Orders:     orders,
				Customers:  customers,
				Promotions: promotions,
				Books:      books,
				Notifier:   notify,
				OnSaved:    orderList.list.Refresh,
				Strictness: cfg.Strictness,
			}),
		},
		stats:   &StatisticsScreen{view: core.NewStatisticsView(adapter.NewStatisticsResource(cfg.Admin), notify)},
		session: core.NewAuthSession(adapter.NewAuthResource(cfg.Auth), cfg.Store, logger),
		notify:  notify,
		log:     logger,
	}
	a.screens = map[model.EntityKind]Screen{
		model.KindCategory:  newEntityScreen(model.KindCategory, categories, namedFields[model.Category](), notify, logger),
		model.KindAuthor:    newEntityScreen(model.KindAuthor, authors, namedFields[model.Author](), notify, logger),
		model.KindPublisher: newEntityScreen(model.KindPublisher, publishers, namedFields[model.Publisher](), notify, logger),
		model.KindBook:      newBookScreen(books, authors, categories, publishers, imageBase, notify, logger),
		model.KindCustomer:  newEntityScreen(model.KindCustomer, customers, customerFields(), notify, logger),
		model.KindStaff:     newEntityScreen(model.KindStaff, staffs, staffFields(), notify, logger),
		model.KindPromotion: newEntityScreen(model.KindPromotion, promotions, promotionFields(), notify, logger),
		model.KindOrder:     a.orders,
	}
	a.pickers = map[model.EntityKind]func(context.Context, io.Writer) error{
		model.KindCategory:  pickerTable(core.NewPicker(model.KindCategory, categories, core.GenericColumns[model.Category](), notify)),
		model.KindAuthor:    pickerTable(core.NewPicker(model.KindAuthor, authors, core.GenericColumns[model.Author](), notify)),
		model.KindPublisher: pickerTable(core.NewPicker(model.KindPublisher, publishers, core.GenericColumns[model.Publisher](), notify)),
		model.KindCustomer:  pickerTable(core.NewPicker(model.KindCustomer, customers, core.CustomerColumns(), notify)),
		model.KindPromotion: pickerTable(core.NewPicker(model.KindPromotion, promotions, core.PromotionColumns(), notify)),
		model.KindBook:      pickerTable(core.NewPicker(model.KindBook, books, core.BookColumns(), notify)),
	}
	return a
}

// pickerTable prints what a picker would offer, then closes it.
func pickerTable[T model.Record](p *core.Picker[T]) func(context.Context, io.Writer) error {
	return func(ctx context.Context, w io.Writer) error {
		if err := p.Open(ctx, nil); err != nil {
			return err
		}
		defer p.Close()
		return renderTable(w, p.Headers(), p.Rows())
	}
}

// Screen resolves an entity name. Plurals and the "staffs" spelling of the
// API are accepted.
func (a *App) Screen(name string) (Screen, error) {
	kind, err := parseKind(name)
	if err != nil {
		return nil, err
	}
	return a.screens[kind], nil
}

func (a *App) Orders() *OrderScreen { return a.orders }

func (a *App) Statistics() *StatisticsScreen { return a.stats }

func (a *App) Pick(ctx context.Context, w io.Writer, name string) error {
	kind, err := parseKind(name)
	if err != nil {
		return err
	}
	show, ok := a.pickers[kind]
	if !ok {
		return inputErr("%s is not pickable", kind)
	}
	return show(ctx, w)
}

func (a *App) Login(ctx context.Context, email, password string) error {
	if err := a.session.Login(ctx, email, password); err != nil {
		a.notify.Notify(core.LevelError, model.UserMessage(err, err.Error()))
		return err
	}
	a.notify.Notify(core.LevelInfo, "logged in")
	return nil
}

func (a *App) Register(ctx context.Context, req model.RegisterRequest) error {
	msg, err := a.session.Register(ctx, req)
	if err != nil {
		a.notify.Notify(core.LevelError, model.UserMessage(err, err.Error()))
		return err
	}
	a.notify.Notify(core.LevelInfo, msg)
	return nil
}

func (a *App) Logout() error {
	if err := a.session.Logout(); err != nil {
		a.notify.Notify(core.LevelError, fmt.Sprintf("logout: %v", err))
		return err
	}
	a.notify.Notify(core.LevelInfo, "logged out")
	return nil
}

func (a *App) Authenticated() bool { return a.session.Authenticated() }

var kindAliases = map[string]model.EntityKind{
	"categories": model.KindCategory,
	"authors":    model.KindAuthor,
	"publishers": model.KindPublisher,
	"books":      model.KindBook,
	"customers":  model.KindCustomer,
	"staffs":     model.KindStaff,
	"promotions": model.KindPromotion,
	"orders":     model.KindOrder,
}

func parseKind(name string) (model.EntityKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}
	for _, k := range kindAliases {
		if string(k) == n {
			return k, nil
		}
	}
	return "", inputErr("unknown entity %q (one of %s)", name, strings.Join(entityNames(), ", "))
}

func entityNames() []string {
	out := make([]string, 0, len(kindAliases))
	for k := range kindAliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
