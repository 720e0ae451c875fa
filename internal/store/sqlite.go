package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"

	_ "github.com/glebarez/go-sqlite"
)

// DB wraps a SQLite database and exposes store implementations backed by it.
// Prices and balances are stored as decimal strings; timestamps as unix
// milliseconds.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at path with WAL mode
// enabled and the schema applied.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			credit_card TEXT NOT NULL DEFAULT '',
			balance TEXT NOT NULL,
			open_balance TEXT NOT NULL,
			login_count INTEGER NOT NULL DEFAULT 0,
			logout_count INTEGER NOT NULL DEFAULT 0,
			creation_date INTEGER NOT NULL,
			last_login INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS holdings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			quantity REAL NOT NULL,
			purchase_price TEXT NOT NULL,
			purchase_date INTEGER NOT NULL,
			account_id INTEGER NOT NULL REFERENCES accounts(id)
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			open_date INTEGER NOT NULL,
			completion_date INTEGER,
			quantity REAL NOT NULL,
			price TEXT NOT NULL,
			fee TEXT NOT NULL,
			account_id INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			holding_id INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS quotes (
			symbol TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			price TEXT NOT NULL,
			open TEXT NOT NULL,
			low TEXT NOT NULL,
			high TEXT NOT NULL,
			change REAL NOT NULL DEFAULT 0,
			volume REAL NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id);`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_account ON holdings(account_id);`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_change ON quotes(change);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Accounts returns the account store backed by this database.
func (d *DB) Accounts() *SQLAccountStore { return &SQLAccountStore{db: d.db} }

// Holdings returns the holding store backed by this database.
func (d *DB) Holdings() *SQLHoldingStore { return &SQLHoldingStore{db: d.db} }

// Orders returns the order store backed by this database.
func (d *DB) Orders() *SQLOrderStore { return &SQLOrderStore{db: d.db} }

// Quotes returns the quote store backed by this database.
func (d *DB) Quotes() *SQLQuoteStore { return &SQLQuoteStore{db: d.db} }

// SQLAccountStore is the SQLite-backed account store.
type SQLAccountStore struct {
	db *sql.DB
}

func (s *SQLAccountStore) Create(a *domain.Account) error {
	res, err := s.db.Exec(
		`INSERT INTO accounts (user_id, password, full_name, address, email, credit_card,
			balance, open_balance, login_count, logout_count, creation_date, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Password, a.FullName, a.Address, a.Email, a.CreditCard,
		a.Balance.String(), a.OpenBalance.String(), a.LoginCount, a.LogoutCount,
		a.CreationDate.UnixMilli(), nullMilli(a.LastLogin),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("account id: %w", err)
	}
	a.ID = int(id)
	return nil
}

func (s *SQLAccountStore) Get(id int) (*domain.Account, error) {
	return s.get("id = ?", id)
}

func (s *SQLAccountStore) GetByUserID(userID string) (*domain.Account, error) {
	return s.get("user_id = ?", userID)
}

func (s *SQLAccountStore) get(where string, arg any) (*domain.Account, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, password, full_name, address, email, credit_card,
			balance, open_balance, login_count, logout_count, creation_date, last_login
		 FROM accounts WHERE `+where, arg)

	var (
		a                domain.Account
		balance, openBal string
		created          int64
		lastLogin        sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Password, &a.FullName, &a.Address, &a.Email,
		&a.CreditCard, &balance, &openBal, &a.LoginCount, &a.LogoutCount, &created, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}

	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if a.OpenBalance, err = decimal.NewFromString(openBal); err != nil {
		return nil, fmt.Errorf("parse open balance: %w", err)
	}
	a.CreationDate = time.UnixMilli(created)
	if lastLogin.Valid {
		t := time.UnixMilli(lastLogin.Int64)
		a.LastLogin = &t
	}
	return &a, nil
}

func (s *SQLAccountStore) Update(a *domain.Account) error {
	res, err := s.db.Exec(
		`UPDATE accounts SET password = ?, full_name = ?, address = ?, email = ?,
			credit_card = ?, balance = ?, open_balance = ?, login_count = ?,
			logout_count = ?, last_login = ?
		 WHERE id = ?`,
		a.Password, a.FullName, a.Address, a.Email, a.CreditCard,
		a.Balance.String(), a.OpenBalance.String(), a.LoginCount, a.LogoutCount,
		nullMilli(a.LastLogin), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return checkAffected(res, domain.ErrAccountNotFound)
}

// AdjustBalance applies a signed delta inside a transaction so concurrent
// adjustments never lose an update.
func (s *SQLAccountStore) AdjustBalance(id int, delta decimal.Decimal) (*domain.Account, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin adjust: %w", err)
	}
	defer tx.Rollback()

	var balance string
	err = tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select balance: %w", err)
	}

	current, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	next := current.Add(delta)

	if _, err := tx.Exec(`UPDATE accounts SET balance = ? WHERE id = ?`, next.String(), id); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust: %w", err)
	}
	return s.Get(id)
}

// SQLHoldingStore is the SQLite-backed holding store.
type SQLHoldingStore struct {
	db *sql.DB
}

func (s *SQLHoldingStore) Create(h *domain.Holding) error {
	res, err := s.db.Exec(
		`INSERT INTO holdings (symbol, quantity, purchase_price, purchase_date, account_id)
		 VALUES (?, ?, ?, ?, ?)`,
		h.Symbol, h.Quantity, h.PurchasePrice.String(), h.PurchaseDate.UnixMilli(), h.AccountID,
	)
	if err != nil {
		return fmt.Errorf("insert holding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("holding id: %w", err)
	}
	h.ID = int(id)
	return nil
}

func (s *SQLHoldingStore) Get(id int) (*domain.Holding, error) {
	row := s.db.QueryRow(
		`SELECT id, symbol, quantity, purchase_price, purchase_date, account_id
		 FROM holdings WHERE id = ?`, id)
	h, err := scanHolding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHoldingNotFound
	}
	return h, err
}

func (s *SQLHoldingStore) ListByAccount(accountID int) ([]*domain.Holding, error) {
	rows, err := s.db.Query(
		`SELECT id, symbol, quantity, purchase_price, purchase_date, account_id
		 FROM holdings WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("select holdings: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Holding, 0)
	for rows.Next() {
		h, err := scanHolding(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLHoldingStore) Update(h *domain.Holding) error {
	res, err := s.db.Exec(
		`UPDATE holdings SET symbol = ?, quantity = ?, purchase_price = ?,
			purchase_date = ?, account_id = ?
		 WHERE id = ?`,
		h.Symbol, h.Quantity, h.PurchasePrice.String(), h.PurchaseDate.UnixMilli(),
		h.AccountID, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update holding: %w", err)
	}
	return checkAffected(res, domain.ErrHoldingNotFound)
}

func (s *SQLHoldingStore) Delete(id int) error {
	res, err := s.db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return checkAffected(res, domain.ErrHoldingNotFound)
}

func scanHolding(scan func(...any) error) (*domain.Holding, error) {
	var (
		h         domain.Holding
		price     string
		purchased int64
	)
	if err := scan(&h.ID, &h.Symbol, &h.Quantity, &price, &purchased, &h.AccountID); err != nil {
		return nil, err
	}
	var err error
	if h.PurchasePrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse purchase price: %w", err)
	}
	h.PurchaseDate = time.UnixMilli(purchased).UTC()
	return &h, nil
}

// SQLOrderStore is the SQLite-backed order store.
type SQLOrderStore struct {
	db *sql.DB
}

func (s *SQLOrderStore) Create(o *domain.Order) error {
	res, err := s.db.Exec(
		`INSERT INTO orders (type, status, open_date, completion_date, quantity,
			price, fee, account_id, symbol, holding_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(o.Type), string(o.Status), o.OpenDate.UnixMilli(), nullMilli(o.CompletionDate),
		o.Quantity, o.Price.String(), o.Fee.String(), o.AccountID, o.Symbol, nullInt(o.HoldingID),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	o.ID = int(id)
	return nil
}

func (s *SQLOrderStore) Get(id int) (*domain.Order, error) {
	row := s.db.QueryRow(
		`SELECT id, type, status, open_date, completion_date, quantity, price, fee,
			account_id, symbol, holding_id
		 FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (s *SQLOrderStore) ListByAccount(accountID int) ([]*domain.Order, error) {
	return s.list(`WHERE account_id = ?`, accountID)
}

func (s *SQLOrderStore) ListByAccountStatus(accountID int, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.list(`WHERE account_id = ? AND status = ?`, accountID, string(status))
}

func (s *SQLOrderStore) list(where string, args ...any) ([]*domain.Order, error) {
	rows, err := s.db.Query(
		`SELECT id, type, status, open_date, completion_date, quantity, price, fee,
			account_id, symbol, holding_id
		 FROM orders `+where+` ORDER BY id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLOrderStore) Update(o *domain.Order) error {
	res, err := s.db.Exec(
		`UPDATE orders SET type = ?, status = ?, open_date = ?, completion_date = ?,
			quantity = ?, price = ?, fee = ?, account_id = ?, symbol = ?, holding_id = ?
		 WHERE id = ?`,
		string(o.Type), string(o.Status), o.OpenDate.UnixMilli(), nullMilli(o.CompletionDate),
		o.Quantity, o.Price.String(), o.Fee.String(), o.AccountID, o.Symbol, nullInt(o.HoldingID),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return checkAffected(res, domain.ErrOrderNotFound)
}

func (s *SQLOrderStore) Delete(id int) error {
	res, err := s.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return checkAffected(res, domain.ErrOrderNotFound)
}

func scanOrder(scan func(...any) error) (*domain.Order, error) {
	var (
		o          domain.Order
		typ, stat  string
		opened     int64
		completed  sql.NullInt64
		price, fee string
		holdingID  sql.NullInt64
	)
	err := scan(&o.ID, &typ, &stat, &opened, &completed, &o.Quantity, &price, &fee,
		&o.AccountID, &o.Symbol, &holdingID)
	if err != nil {
		return nil, err
	}

	o.Type = domain.OrderType(typ)
	o.Status = domain.OrderStatus(stat)
	o.OpenDate = time.UnixMilli(opened)
	if completed.Valid {
		t := time.UnixMilli(completed.Int64)
		o.CompletionDate = &t
	}
	if o.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if o.Fee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("parse fee: %w", err)
	}
	if holdingID.Valid {
		id := int(holdingID.Int64)
		o.HoldingID = &id
	}
	return &o, nil
}

// SQLQuoteStore is the SQLite-backed quote store.
type SQLQuoteStore struct {
	db *sql.DB
}

func (s *SQLQuoteStore) Create(q *domain.Quote) error {
	_, err := s.db.Exec(
		`INSERT INTO quotes (symbol, company_name, price, open, low, high, change, volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Symbol, q.CompanyName, q.Price.String(), q.Open.String(), q.Low.String(),
		q.High.String(), q.Change, q.Volume,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrQuoteAlreadyExists
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (s *SQLQuoteStore) Get(symbol string) (*domain.Quote, error) {
	row := s.db.QueryRow(
		`SELECT symbol, company_name, price, open, low, high, change, volume
		 FROM quotes WHERE symbol = ?`, symbol)
	q, err := scanQuote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQuoteNotFound
	}
	return q, err
}

func (s *SQLQuoteStore) All() ([]*domain.Quote, error) {
	return s.query(`ORDER BY symbol`)
}

func (s *SQLQuoteStore) Update(q *domain.Quote) error {
	res, err := s.db.Exec(
		`UPDATE quotes SET company_name = ?, price = ?, open = ?, low = ?, high = ?,
			change = ?, volume = ?
		 WHERE symbol = ?`,
		q.CompanyName, q.Price.String(), q.Open.String(), q.Low.String(), q.High.String(),
		q.Change, q.Volume, q.Symbol,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	return checkAffected(res, domain.ErrQuoteNotFound)
}

// Apply loads the quote for symbol, runs mutate on it, and writes it back
// inside a single transaction so concurrent updates to the same symbol
// never lose a write.
func (s *SQLQuoteStore) Apply(symbol string, mutate func(q *domain.Quote)) (*domain.Quote, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin apply: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT symbol, company_name, price, open, low, high, change, volume
		 FROM quotes WHERE symbol = ?`, symbol)
	q, err := scanQuote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}

	mutate(q)
	q.Symbol = symbol

	_, err = tx.Exec(
		`UPDATE quotes SET company_name = ?, price = ?, open = ?, low = ?, high = ?,
			change = ?, volume = ?
		 WHERE symbol = ?`,
		q.CompanyName, q.Price.String(), q.Open.String(), q.Low.String(), q.High.String(),
		q.Change, q.Volume, symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("apply quote: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit apply: %w", err)
	}
	return q, nil
}

func (s *SQLQuoteStore) TopGainers(n int) ([]*domain.Quote, error) {
	return s.query(`ORDER BY change DESC, symbol DESC LIMIT ?`, n)
}

func (s *SQLQuoteStore) TopLosers(n int) ([]*domain.Quote, error) {
	return s.query(`ORDER BY change ASC, symbol ASC LIMIT ?`, n)
}

func (s *SQLQuoteStore) query(clause string, args ...any) ([]*domain.Quote, error) {
	rows, err := s.db.Query(
		`SELECT symbol, company_name, price, open, low, high, change, volume
		 FROM quotes `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Aggregates mirrors the summary SQL of the original schema: mean price,
// mean open, total volume over all quotes.
func (s *SQLQuoteStore) Aggregates() (tsia, openTSIA decimal.Decimal, volume float64, err error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(CAST(price AS REAL)), 0),
			COALESCE(AVG(CAST(open AS REAL)), 0), COALESCE(SUM(volume), 0)
		 FROM quotes`)

	var (
		count             int
		avgPrice, avgOpen float64
	)
	if err = row.Scan(&count, &avgPrice, &avgOpen, &volume); err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("select aggregates: %w", err)
	}
	if count == 0 {
		return decimal.Zero, decimal.Zero, 0, nil
	}
	return decimal.NewFromFloat(avgPrice), decimal.NewFromFloat(avgOpen), volume, nil
}

func scanQuote(scan func(...any) error) (*domain.Quote, error) {
	var (
		q                      domain.Quote
		price, open, low, high string
	)
	if err := scan(&q.Symbol, &q.CompanyName, &price, &open, &low, &high, &q.Change, &q.Volume); err != nil {
		return nil, err
	}
	var err error
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if q.Open, err = decimal.NewFromString(open); err != nil {
		return nil, fmt.Errorf("parse open: %w", err)
	}
	if q.Low, err = decimal.NewFromString(low); err != nil {
		return nil, fmt.Errorf("parse low: %w", err)
	}
	if q.High, err = decimal.NewFromString(high); err != nil {
		return nil, fmt.Errorf("parse high: %w", err)
	}
	return &q, nil
}

func nullMilli(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// glebarez/go-sqlite surfaces constraint violations as plain errors;
	// match on the SQLite message text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
