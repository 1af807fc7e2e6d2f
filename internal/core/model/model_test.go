//go:build unit

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024-03-05T10:20:30", "2024-03-05T10:20:30Z", "2024-03-05T10:20:30.123+07:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2024-03-05", d.String(), s)
	}

	d, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())

	_, err = ParseDate("05/03/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var c Customer
	require.NoError(t, json.Unmarshal([]byte(`{"id":"cu1","givenName":"An","dateOfBirth":null}`), &c))
	assert.True(t, c.DateOfBirth.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"cu1","givenName":"An","dateOfBirth":"1990-01-02T00:00:00"}`), &c))
	assert.Equal(t, "1990-01-02", c.DateOfBirth.String())

	b, err := json.Marshal(NewDate(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-02T03:04:05"`, string(b))

	b, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestDecimal_MarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Book{ID: "b1", Price: decimal.RequireFromString("125000")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":125000`)
}

func TestValidate_Book(t *testing.T) {
	err := Validate(Book{Quantity: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be provided", verr.Fields["title"])
	assert.Equal(t, "must be provided", verr.Fields["categoryId"])
	assert.Equal(t, "must be provided", verr.Fields["authorId"])
	assert.Equal(t, "must be provided", verr.Fields["publisherId"])
	assert.Equal(t, "must be at least 0", verr.Fields["quantity"])

	assert.NoError(t, Validate(Book{Title: "T", CategoryID: "c1", AuthorID: "a1", PublisherID: "p1"}))
}

func TestValidate_Promotion_DatesRequired(t *testing.T) {
	err := Validate(Promotion{Name: "Summer"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "startDate")
	assert.Contains(t, verr.Fields, "endDate")

	start, _ := ParseDate("2024-06-01")
	end, _ := ParseDate("2024-06-30")
	assert.NoError(t, Validate(Promotion{Name: "Summer", StartDate: start, EndDate: end}))
}

func TestValidate_StaffEmail(t *testing.T) {
	err := Validate(Staff{GivenName: "Lan", Email: "not-an-email"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
}

func TestCheckWire_RequiresID(t *testing.T) {
	assert.ErrorIs(t, CheckWire(Category{Name: "x"}), ErrValidation)
	assert.NoError(t, CheckWire(Category{ID: "c1"}))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "validation failed: a: one; b: two", err.Error())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Sách đã tồn tại", UserMessage(fmt.Errorf("wrap: %w", &HTTPError{Status: 409, Message: "Sách đã tồn tại"}), "save failed"))
	assert.Equal(t, "save failed", UserMessage(&HTTPError{Status: 500}, "save failed"))
	assert.Equal(t, "save failed", UserMessage(&NetworkError{Method: "GET", URL: "http://x", Err: errors.New("refused")}, "save failed"))
	assert.True(t, strings.HasPrefix(UserMessage(&ValidationError{Fields: map[string]string{"name": "must be provided"}}, "x"), "validation failed"))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, &NetworkError{Err: errors.New("x")}, ErrNetwork)
	assert.ErrorIs(t, &HTTPError{Status: 404}, ErrHTTP)
	assert.ErrorIs(t, &DecodeError{Path: "/p", Err: errors.New("x")}, ErrMalformed)
	assert.NotErrorIs(t, &HTTPError{Status: 404}, ErrNetwork)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "225000", FormatMoney(decimal.RequireFromString("225000")))
	assert.Equal(t, "33334", FormatMoney(decimal.RequireFromString("33333.5")))
	assert.Equal(t, "0", FormatMoney(decimal.Zero))
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("cash")
	require.True(t, ok)
	assert.Equal(t, PaymentCash, m)

	m, ok = ParsePaymentMethod("Chuyển khoản")
	require.True(t, ok)
	assert.Equal(t, PaymentBankTransfer, m)

	_, ok = ParsePaymentMethod("cheque")
	assert.False(t, ok)
}

func TestImageFile(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	f, err := NewImageFile("cover.png", strings.NewReader(string(png)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())
	assert.True(t, strings.HasPrefix(f.PreviewURL(), "data:image/png;base64,"))

	assert.Equal(t, "http://api/images/x.png", ImageURL("http://api/", "/images/x.png"))
	assert.Equal(t, "", ImageURL("http://api", ""))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Nguyễn An", FullName("Nguyễn", "An"))
	assert.Equal(t, "An", FullName("", "An"))
}
