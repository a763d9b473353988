// Package settings owns the singleton storefront configuration record: markup rates,
// order and referral amounts, and the business identity printed on invoices.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
)

// SingletonID is the fixed primary key of the settings row.
const SingletonID = "default"

// Settings is the storefront configuration snapshot.
type Settings struct {
	ID                string          `json:"id"`
	MarkupPercent     int32           `json:"markupPercent"`
	RegionalMarkup    json.RawMessage `json:"regionalMarkup"`
	MinOrderValue     int64           `json:"minOrderValue"`
	FreeDataThreshold int64           `json:"freeDataThreshold"`
	FreeDataBonus     int32           `json:"freeDataBonus"`
	ReferralBonus     int64           `json:"referralBonus"`
	RefereeBonus      int64           `json:"refereeBonus"`
	BusinessName      string          `json:"businessName"`
	BusinessAddress   string          `json:"businessAddress"`
	BusinessEmail     string          `json:"businessEmail"`
	BusinessPhone     string          `json:"businessPhone"`
	BusinessVAT       string          `json:"businessVat"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Defaults mirrors the column defaults of the settings table.
func Defaults() Settings {
	return Settings{
		ID:                SingletonID,
		MarkupPercent:     20,
		RegionalMarkup:    json.RawMessage("{}"),
		MinOrderValue:     100,
		FreeDataThreshold: 5000,
		FreeDataBonus:     500,
		ReferralBonus:     500,
		RefereeBonus:      300,
	}
}

// Rates converts the markup fields into pricing rates.
func (s Settings) Rates() pricing.Rates {
	return pricing.NewRates(int64(s.MarkupPercent), string(s.RegionalMarkup))
}

// Patch carries the fields an administrator wants to change. Nil fields are left untouched.
type Patch struct {
	MarkupPercent     *Number         `json:"markupPercent"`
	RegionalMarkup    json.RawMessage `json:"regionalMarkup"`
	MinOrderValue     *Number         `json:"minOrderValue"`
	FreeDataThreshold *Number         `json:"freeDataThreshold"`
	FreeDataBonus     *Number         `json:"freeDataBonus"`
	ReferralBonus     *Number         `json:"referralBonus"`
	RefereeBonus      *Number         `json:"refereeBonus"`
	BusinessName      *string         `json:"businessName"`
	BusinessAddress   *string         `json:"businessAddress"`
	BusinessEmail     *string         `json:"businessEmail"`
	BusinessPhone     *string         `json:"businessPhone"`
	BusinessVAT       *string         `json:"businessVat"`
}

// Number is an integer field that also accepts numeric strings. Input that is not a number
// decodes to 0, fractions are truncated and magnitudes beyond int64 saturate.
type Number int64

var (
	minNumber = decimal.NewFromInt(math.MinInt64)
	maxNumber = decimal.NewFromInt(math.MaxInt64)
)

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		*n = 0
		return nil
	}
	switch {
	case d.LessThan(minNumber):
		*n = math.MinInt64
	case d.GreaterThan(maxNumber):
		*n = math.MaxInt64
	default:
		*n = Number(d.IntPart())
	}
	return nil
}

// Store is the subset of generated queries used by the settings service.
type Store interface {
	GetSettings(ctx context.Context) (dbgen.Setting, error)
	InitSettings(ctx context.Context) (dbgen.Setting, error)
	UpdateSettings(ctx context.Context, arg dbgen.UpdateSettingsParams) (dbgen.Setting, error)
}

// Service reads and mutates the settings singleton.
type Service struct {
	store Store
}

// NewService constructs a settings service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetOrInitialize returns the singleton, inserting the default row when it does not exist yet.
func (s *Service) GetOrInitialize(ctx context.Context) (Settings, error) {
	if s == nil || s.store == nil {
		return Settings{}, errors.New("settings: store not configured")
	}
	row, err := s.store.GetSettings(ctx)
	if err == nil {
		return fromRow(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	row, err = s.store.InitSettings(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		// another request created the row between our read and insert
		row, err = s.store.GetSettings(ctx)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("init settings: %w", err)
	}
	return fromRow(row), nil
}

// Update merges patch into the singleton. Concurrent updates are last-write-wins.
// A field that does not fit its column is rejected with a validation error.
func (s *Service) Update(ctx context.Context, patch Patch) (Settings, error) {
	params, err := patch.params()
	if err != nil {
		return Settings{}, err
	}
	if _, err := s.GetOrInitialize(ctx); err != nil {
		return Settings{}, err
	}
	row, err := s.store.UpdateSettings(ctx, params)
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return fromRow(row), nil
}

// Rates implements pricing.RatesSource.
func (s *Service) Rates(ctx context.Context) (pricing.Rates, error) {
	current, err := s.GetOrInitialize(ctx)
	if err != nil {
		return pricing.Rates{}, err
	}
	return current.Rates(), nil
}

func (p Patch) params() (dbgen.UpdateSettingsParams, error) {
	markup, err := optInt4("markupPercent", p.MarkupPercent)
	if err != nil {
		return dbgen.UpdateSettingsParams{}, err
	}
	bonus, err := optInt4("freeDataBonus", p.FreeDataBonus)
	if err != nil {
		return dbgen.UpdateSettingsParams{}, err
	}
	return dbgen.UpdateSettingsParams{
		MarkupPercent:     markup,
		RegionalMarkup:    regionalText(p.RegionalMarkup),
		MinOrderValue:     optInt8(p.MinOrderValue),
		FreeDataThreshold: optInt8(p.FreeDataThreshold),
		FreeDataBonus:     bonus,
		ReferralBonus:     optInt8(p.ReferralBonus),
		RefereeBonus:      optInt8(p.RefereeBonus),
		BusinessName:      optText(p.BusinessName),
		BusinessAddress:   optText(p.BusinessAddress),
		BusinessEmail:     optText(p.BusinessEmail),
		BusinessPhone:     optText(p.BusinessPhone),
		BusinessVat:       optText(p.BusinessVAT),
	}, nil
}

// regionalText stores objects as compact JSON and strings verbatim.
func regionalText(raw json.RawMessage) pgtype.Text {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return pgtype.Text{}
	}
	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil {
		return pgtype.Text{String: asString, Valid: true}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return pgtype.Text{String: string(trimmed), Valid: true}
	}
	return pgtype.Text{String: compact.String(), Valid: true}
}

func fromRow(row dbgen.Setting) Settings {
	out := Settings{
		ID:                row.ID,
		MarkupPercent:     row.MarkupPercent,
		RegionalMarkup:    regionalJSON(row.RegionalMarkup),
		MinOrderValue:     row.MinOrderValue,
		FreeDataThreshold: row.FreeDataThreshold,
		FreeDataBonus:     row.FreeDataBonus,
		ReferralBonus:     row.ReferralBonus,
		RefereeBonus:      row.RefereeBonus,
		BusinessName:      row.BusinessName.String,
		BusinessAddress:   row.BusinessAddress.String,
		BusinessEmail:     row.BusinessEmail.String,
		BusinessPhone:     row.BusinessPhone.String,
		BusinessVAT:       row.BusinessVat.String,
	}
	if row.UpdatedAt.Valid {
		out.UpdatedAt = row.UpdatedAt.Time
	}
	return out
}

// regionalJSON exposes the stored override text as a JSON object, or {} when it is not one.
func regionalJSON(stored string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stored), &obj); err != nil || obj == nil {
		return json.RawMessage("{}")
	}
	return json.RawMessage(stored)
}

func optInt4(field string, n *Number) (pgtype.Int4, error) {
	if n == nil {
		return pgtype.Int4{}, nil
	}
	if *n < math.MinInt32 || *n > math.MaxInt32 {
		return pgtype.Int4{}, common.ErrValidation(fmt.Sprintf("%s is out of range", field))
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}, nil
}

func optInt8(n *Number) pgtype.Int8 {
	if n == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: int64(*n), Valid: true}
}

func optText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.TrimSpace(*v), Valid: true}
}
