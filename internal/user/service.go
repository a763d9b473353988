package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	walletHistoryLimit = 20
	uniqueViolation    = "23505"
)

// Store is the subset of generated queries used by the admin user service.
type Store interface {
	CountUsers(ctx context.Context, arg dbgen.CountUsersParams) (int64, error)
	ListUsers(ctx context.Context, arg dbgen.ListUsersParams) ([]dbgen.ListUsersRow, error)
	CreateUser(ctx context.Context, arg dbgen.CreateUserParams) (dbgen.User, error)
	UpdateUser(ctx context.Context, arg dbgen.UpdateUserParams) (dbgen.User, error)
	DeleteUser(ctx context.Context, id pgtype.UUID) (int64, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (dbgen.User, error)
	GetUserByEmail(ctx context.Context, email string) (dbgen.User, error)
	ListEsimsByUser(ctx context.Context, userID pgtype.UUID) ([]dbgen.Esim, error)
	ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]dbgen.Order, error)
	ListWalletTransactionsByUser(ctx context.Context, arg dbgen.ListWalletTransactionsByUserParams) ([]dbgen.WalletTransaction, error)
}

// Service implements administrator user management.
type Service struct {
	store    Store
	validate *validator.Validate
	hash     func(string) (string, error)
}

// NewService constructs a Service. Passwords are hashed with argon2id.
func NewService(store Store, validate *validator.Validate) *Service {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Service{
		store:    store,
		validate: validate,
		hash: func(password string) (string, error) {
			return argon2id.CreateHash(password, argon2id.DefaultParams)
		},
	}
}

// ListParams filters the user listing.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Role      string `validate:"omitempty,oneof=USER ADMIN"`
	SortBy    string `validate:"omitempty,oneof=createdAt email name credits"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

// Counts holds the number of related records.
type Counts struct {
	Orders int64 `json:"orders"`
	Esims  int64 `json:"esims"`
}

// Summary is one row of the admin user listing.
type Summary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        *string    `json:"name"`
	Role        string     `json:"role"`
	Credits     int64      `json:"credits"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	Count       Counts     `json:"_count"`
}

// User is the admin view of a single account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         *string    `json:"name"`
	Role         string     `json:"role"`
	Credits      int64      `json:"credits"`
	IsActive     bool       `json:"isActive"`
	ReferralCode *string    `json:"referralCode,omitempty"`
	ReferredBy   *string    `json:"referredBy,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Detail is a user with their eSIMs, orders and latest wallet activity.
type Detail struct {
	User
	Esims              []Esim              `json:"esims"`
	Orders             []Order             `json:"orders"`
	WalletTransactions []WalletTransaction `json:"walletTransactions"`
}

// Esim is an eSIM owned by the user.
type Esim struct {
	ID            string     `json:"id"`
	ICCID         string     `json:"iccid"`
	Status        string     `json:"status"`
	CountryName   string     `json:"countryName"`
	PlanName      string     `json:"planName"`
	DataUsed      int64      `json:"dataUsed"`
	DataLimit     int64      `json:"dataLimit"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	IsGifted      bool       `json:"isGifted"`
	GiftedToEmail *string    `json:"giftedToEmail"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Order is an order placed by the user.
type Order struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	CountryName string    `json:"countryName"`
	PlanName    string    `json:"planName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WalletTransaction is a credit movement on the user's wallet.
type WalletTransaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Balance     int64     `json:"balance"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateInput is the payload for creating a user.
type CreateInput struct {
	Email    string  `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name"`
	Password string  `json:"password"`
	Role     string  `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Credits  int64   `json:"credits" validate:"gte=0"`
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Credits  *int64  `json:"credits" validate:"omitempty,gte=0"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// Changes returns the supplied fields for audit logging, with the password redacted.
func (in UpdateInput) Changes() map[string]any {
	out := map[string]any{}
	if in.Name != nil {
		out["name"] = *in.Name
	}
	if in.Email != nil {
		out["email"] = *in.Email
	}
	if in.Role != nil {
		out["role"] = *in.Role
	}
	if in.Credits != nil {
		out["credits"] = *in.Credits
	}
	if in.IsActive != nil {
		out["isActive"] = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		out["password"] = *in.Password
	}
	return out
}

// List returns one page of users and the total number of matches.
func (s *Service) List(ctx context.Context, params ListParams) ([]Summary, common.Pagination, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, common.Pagination{}, common.ErrValidation("invalid filter: " + fieldNames(err))
	}
	search := pgconv.Text(params.Search)
	role := pgconv.Text(strings.ToUpper(params.Role))
	total, err := s.store.CountUsers(ctx, dbgen.CountUsersParams{Search: search, Role: role})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("count users: %w", err)
	}
	page := common.NewPagination(params.Page, params.Limit, total)
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	rows, err := s.store.ListUsers(ctx, dbgen.ListUsersParams{
		Search:    search,
		Role:      role,
		SortBy:    sortBy,
		SortDesc:  params.SortOrder != "asc",
		RowLimit:  int32(page.Limit),
		RowOffset: page.RowOffset(),
	})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, Summary{
			ID:          pgconv.UUIDString(row.ID),
			Email:       row.Email,
			Name:        pgconv.StringPtr(row.Name),
			Role:        row.Role,
			Credits:     row.Credits,
			IsActive:    row.IsActive,
			LastLoginAt: pgconv.TimePtr(row.LastLoginAt),
			CreatedAt:   pgconv.Time(row.CreatedAt),
			Count:       Counts{Orders: row.OrderCount, Esims: row.EsimCount},
		})
	}
	return out, page, nil
}

// Create validates input, hashes the password and inserts the user.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return User{}, common.ErrValidation("Email and password are required")
	}
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if err := s.validate.Struct(in); err != nil {
		return User{}, common.ErrValidation("invalid user: " + fieldNames(err))
	}
	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return User{}, errDuplicateEmail()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = RoleUser
	}
	row, err := s.store.CreateUser(ctx, dbgen.CreateUserParams{
		Email:        in.Email,
		Name:         pgconv.TextPtr(in.Name),
		PasswordHash: pgtype.Text{String: hash, Valid: true},
		Role:         role,
		Credits:      in.Credits,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, errDuplicateEmail()
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return toUser(row), nil
}

// Get returns the user with related eSIMs, orders and wallet history, loaded concurrently.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	uid, err := pgconv.UUID(id)
	if err != nil {
		return Detail{}, errUserNotFound()
	}
	var (
		row     dbgen.User
		esims   []dbgen.Esim
		orders  []dbgen.Order
		history []dbgen.WalletTransaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		row, err = s.store.GetUserByID(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		esims, err = s.store.ListEsimsByUser(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.store.ListOrdersByUser(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.store.ListWalletTransactionsByUser(gctx, dbgen.ListWalletTransactionsByUserParams{UserID: uid, Limit: walletHistoryLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, errUserNotFound()
		}
		return Detail{}, fmt.Errorf("load user: %w", err)
	}

	detail := Detail{
		User:               toUser(row),
		Esims:              make([]Esim, 0, len(esims)),
		Orders:             make([]Order, 0, len(orders)),
		WalletTransactions: make([]WalletTransaction, 0, len(history)),
	}
	for _, e := range esims {
		detail.Esims = append(detail.Esims, Esim{
			ID:            pgconv.UUIDString(e.ID),
			ICCID:         e.Iccid,
			Status:        e.Status,
			CountryName:   e.CountryName,
			PlanName:      e.PlanName,
			DataUsed:      e.DataUsed,
			DataLimit:     e.DataLimit,
			ExpiresAt:     pgconv.TimePtr(e.ExpiresAt),
			IsGifted:      e.IsGifted,
			GiftedToEmail: pgconv.StringPtr(e.GiftedToEmail),
			CreatedAt:     pgconv.Time(e.CreatedAt),
		})
	}
	for _, o := range orders {
		detail.Orders = append(detail.Orders, Order{
			ID:          pgconv.UUIDString(o.ID),
			Status:      o.Status,
			Total:       o.Total,
			CountryName: o.CountryName,
			PlanName:    o.PlanName,
			CreatedAt:   pgconv.Time(o.CreatedAt),
		})
	}
	for _, tx := range history {
		detail.WalletTransactions = append(detail.WalletTransactions, WalletTransaction{
			ID:          pgconv.UUIDString(tx.ID),
			Type:        tx.Type,
			Amount:      tx.Amount,
			Balance:     tx.Balance,
			Description: pgconv.StringPtr(tx.Description),
			Status:      tx.Status,
			CreatedAt:   pgconv.Time(tx.CreatedAt),
		})
	}
	return detail, nil
}

// Update applies the supplied fields to the user.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	uid, err := pgconv.UUID(id)
	if err != nil {
		return User{}, errUserNotFound()
	}
	if in.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*in.Role))
		in.Role = &role
	}
	if err := s.validate.Struct(in); err != nil {
		return User{}, common.ErrValidation("invalid user: " + fieldNames(err))
	}
	params := dbgen.UpdateUserParams{
		Name:  pgconv.TextPtr(in.Name),
		Email: pgconv.TextPtr(in.Email),
		ID:    uid,
	}
	if in.Role != nil {
		params.Role = pgtype.Text{String: *in.Role, Valid: true}
	}
	if in.Credits != nil {
		params.Credits = pgtype.Int8{Int64: *in.Credits, Valid: true}
	}
	if in.IsActive != nil {
		params.IsActive = pgtype.Bool{Bool: *in.IsActive, Valid: true}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = pgtype.Text{String: hash, Valid: true}
	}
	row, err := s.store.UpdateUser(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return User{}, errUserNotFound()
		case isUniqueViolation(err):
			return User{}, errDuplicateEmail()
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return toUser(row), nil
}

// Delete removes the user. An administrator cannot delete their own account.
// It returns the deleted user's e-mail for auditing.
func (s *Service) Delete(ctx context.Context, actorID, id string) (string, error) {
	uid, err := pgconv.UUID(id)
	if err != nil {
		return "", errUserNotFound()
	}
	// Compare parsed values so every textual form of the actor's ID matches.
	if actor, err := pgconv.UUID(actorID); err == nil && actor.Bytes == uid.Bytes {
		return "", common.ErrValidation("Cannot delete your own account")
	}
	row, err := s.store.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errUserNotFound()
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	affected, err := s.store.DeleteUser(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return "", errUserNotFound()
	}
	return row.Email, nil
}

func toUser(row dbgen.User) User {
	out := User{
		ID:           pgconv.UUIDString(row.ID),
		Email:        row.Email,
		Name:         pgconv.StringPtr(row.Name),
		Role:         row.Role,
		Credits:      row.Credits,
		IsActive:     row.IsActive,
		ReferralCode: pgconv.StringPtr(row.ReferralCode),
		LastLoginAt:  pgconv.TimePtr(row.LastLoginAt),
		CreatedAt:    pgconv.Time(row.CreatedAt),
		UpdatedAt:    pgconv.Time(row.UpdatedAt),
	}
	if row.ReferredBy.Valid {
		ref := pgconv.UUIDString(row.ReferredBy)
		out.ReferredBy = &ref
	}
	return out
}

func errUserNotFound() *common.AppError {
	return common.ErrNotFound("User not found")
}

func errDuplicateEmail() *common.AppError {
	return common.ErrValidation("User with this email already exists")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func fieldNames(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return strings.Join(names, ", ")
}
