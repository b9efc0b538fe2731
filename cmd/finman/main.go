// Command finman is the terminal client: it keeps a local working set of the
// user's expenses, applies filters and sorting locally, and talks to the
// finmand REST API for everything durable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"finman/internal/core"
	"finman/internal/export"
	"finman/internal/gateway"
	applog "finman/internal/log"
	"finman/internal/session"
	"finman/internal/store"
)

const usage = `Usage: finman <command> [flags]

Commands:
  register   create an account
  login      authenticate and persist the session
  logout     drop the stored session
  list       show expenses (filter and sort locally)
  add        record a new expense
  edit       change an existing expense
  delete     remove an expense
  export     write the (filtered) expense list as CSV
  summary    show totals and category breakdown

Run 'finman <command> -h' for command flags.
`

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelWarn}).WithComponent(applog.ComponentCLI)
	applog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	app, err := newApp()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	switch cmd := os.Args[1]; cmd {
	case "register":
		err = app.register(ctx, os.Args[2:])
	case "login":
		err = app.login(ctx, os.Args[2:])
	case "logout":
		err = app.logout(ctx)
	case "list":
		err = app.list(ctx, os.Args[2:])
	case "add":
		err = app.add(ctx, os.Args[2:])
	case "edit":
		err = app.edit(ctx, os.Args[2:])
	case "delete":
		err = app.remove(ctx, os.Args[2:])
	case "export":
		err = app.export(ctx, os.Args[2:])
	case "summary":
		err = app.summary(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	switch {
	case errors.Is(err, gateway.ErrUnavailable):
		fmt.Fprintf(os.Stderr, "finman: backend unreachable: %v\n", err)
	case errors.Is(err, gateway.ErrUnauthorized), errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(os.Stderr, "finman: not logged in (run 'finman login')")
	default:
		fmt.Fprintf(os.Stderr, "finman: %v\n", err)
	}
	os.Exit(1)
}

type app struct {
	client   *gateway.Client
	sessions *session.Manager
	expenses *store.Store
}

func newApp() (*app, error) {
	baseURL := os.Getenv("FINMAN_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	path, err := session.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}

	return &app{
		client:   gateway.New(baseURL),
		sessions: session.NewManager(path),
		expenses: store.New(),
	}, nil
}

// restore loads the persisted session and installs its token on the client.
func (a *app) restore() (session.Session, error) {
	s, err := a.sessions.Restore()
	if err != nil {
		return session.Session{}, err
	}
	a.client.SetToken(s.Token)
	return s, nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 characters)")
	fs.Parse(args)

	user, err := a.client.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	user, token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(session.Session{User: user, Token: token}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	fmt.Printf("logged in as %s\n", user.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	_ = ctx
	if err := a.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Println("logged out")
	return nil
}

// viewFlags are the filter and sort options shared by list and export.
type viewFlags struct {
	search   *string
	category *string
	from     *string
	to       *string
	sortKey  *string
	order    *string
}

func addViewFlags(fs *flag.FlagSet) viewFlags {
	return viewFlags{
		search:   fs.String("search", "", "substring match on description"),
		category: fs.String("category", "", "exact category match"),
		from:     fs.String("from", "", "start date (YYYY-MM-DD, inclusive)"),
		to:       fs.String("to", "", "end date (YYYY-MM-DD, inclusive)"),
		sortKey:  fs.String("sort", "date", "sort key: date, amount or category"),
		order:    fs.String("order", "asc", "sort order: asc or desc"),
	}
}

func (v viewFlags) criteria() (core.Criteria, error) {
	c := core.Criteria{Text: *v.search, Category: *v.category}
	if *v.from != "" {
		d, err := core.ParseDate(*v.from)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("-from: %w", err)
		}
		c.DateFrom = d
	}
	if *v.to != "" {
		d, err := core.ParseDate(*v.to)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("-to: %w", err)
		}
		c.DateTo = d
	}
	return c, nil
}

func (v viewFlags) sorting() (core.SortKey, core.SortOrder, error) {
	key := core.SortKey(*v.sortKey)
	order := core.SortOrder(*v.order)
	if !key.IsValid() {
		return "", "", fmt.Errorf("-sort: unknown key %q", *v.sortKey)
	}
	if !order.IsValid() {
		return "", "", fmt.Errorf("-order: unknown order %q", *v.order)
	}
	return key, order, nil
}

// load fetches the user's expenses into the local store and returns the view
// after filtering and sorting.
func (a *app) load(ctx context.Context, v viewFlags) ([]core.Expense, error) {
	s, err := a.restore()
	if err != nil {
		return nil, err
	}
	records, err := a.client.List(ctx, s.User.ID)
	if err != nil {
		return nil, err
	}
	a.expenses.ReplaceAll(records)

	criteria, err := v.criteria()
	if err != nil {
		return nil, err
	}
	key, order, err := v.sorting()
	if err != nil {
		return nil, err
	}
	return core.Sort(core.Filter(a.expenses.All(), criteria), key, order), nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	v := addViewFlags(fs)
	fs.Parse(args)

	view, err := a.load(ctx, v)
	if err != nil {
		return err
	}
	if len(view) == 0 {
		fmt.Println("no expenses")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, e := range view {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Amount, e.Category, e.Description)
	}
	return w.Flush()
}

// parseExpenseFlags reads the record fields shared by add and edit.
func parseExpenseFlags(fs *flag.FlagSet) (amount, category, description, date *string) {
	amount = fs.String("amount", "", "amount, e.g. 12.34 (comma accepted)")
	category = fs.String("category", "", "category name")
	description = fs.String("desc", "", "free-form description")
	date = fs.String("date", "", "date (YYYY-MM-DD, default today)")
	return
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount, category, description, date := parseExpenseFlags(fs)
	fs.Parse(args)

	s, err := a.restore()
	if err != nil {
		return err
	}

	money, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("-amount: %w", err)
	}
	day := core.Today()
	if *date != "" {
		if day, err = core.ParseDate(*date); err != nil {
			return fmt.Errorf("-date: %w", err)
		}
	}

	e := core.Expense{
		UserID:      s.User.ID,
		Amount:      money,
		Category:    *category,
		Description: *description,
		Date:        day,
	}
	if err := e.Validate(); err != nil {
		return err
	}

	created, err := a.client.Create(ctx, e)
	if err != nil {
		return err
	}
	a.expenses.Insert(created)
	fmt.Printf("added expense #%d: %s %s on %s\n", created.ID, created.Amount, created.Category, created.Date)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "expense id")
	amount, category, description, date := parseExpenseFlags(fs)
	fs.Parse(args)

	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}

	s, err := a.restore()
	if err != nil {
		return err
	}
	records, err := a.client.List(ctx, s.User.ID)
	if err != nil {
		return err
	}
	a.expenses.ReplaceAll(records)

	var current core.Expense
	found := false
	for _, e := range records {
		if e.ID == *id {
			current, found = e, true
			break
		}
	}
	if !found {
		return fmt.Errorf("expense #%d not found", *id)
	}

	// Only flags that were set override the current record.
	if *amount != "" {
		if current.Amount, err = core.ParseAmount(*amount); err != nil {
			return fmt.Errorf("-amount: %w", err)
		}
	}
	if *category != "" {
		current.Category = *category
	}
	if *description != "" {
		current.Description = *description
	}
	if *date != "" {
		if current.Date, err = core.ParseDate(*date); err != nil {
			return fmt.Errorf("-date: %w", err)
		}
	}
	if err := current.Validate(); err != nil {
		return err
	}

	updated, err := a.client.Update(ctx, *id, current)
	if err != nil {
		return err
	}
	a.expenses.ReplaceByID(*id, updated)
	fmt.Printf("updated expense #%d: %s %s on %s\n", updated.ID, updated.Amount, updated.Category, updated.Date)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "expense id")
	fs.Parse(args)

	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}
	if _, err := a.restore(); err != nil {
		return err
	}

	if err := a.client.Delete(ctx, *id); err != nil {
		return err
	}
	a.expenses.RemoveByID(*id)
	fmt.Printf("deleted expense #%d\n", *id)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	v := addViewFlags(fs)
	out := fs.String("out", "", "output file (default expenses_export_<today>.csv)")
	fs.Parse(args)

	view, err := a.load(ctx, v)
	if err != nil {
		return err
	}

	data, err := export.CSV(view)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = export.Filename(core.Today())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("exported %d expenses to %s\n", len(view), path)
	return nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	fromFlag := fs.String("from", "", "start date (YYYY-MM-DD, default first of current month)")
	toFlag := fs.String("to", "", "end date (YYYY-MM-DD, default last of current month)")
	fs.Parse(args)

	s, err := a.restore()
	if err != nil {
		return err
	}

	// Default window is the current calendar month.
	from, to := currentMonthRange()
	if *fromFlag != "" {
		if from, err = core.ParseDate(*fromFlag); err != nil {
			return fmt.Errorf("-from: %w", err)
		}
	}
	if *toFlag != "" {
		if to, err = core.ParseDate(*toFlag); err != nil {
			return fmt.Errorf("-to: %w", err)
		}
	}

	summary, err := a.client.Summary(ctx, s.User.ID, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("total %s to %s: %s\n", from, to, summary.Total)
	if len(summary.ByCategory) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSUBTOTAL\tSHARE")
	for _, row := range summary.ByCategory {
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\n", row.Name, row.Subtotal, row.Percentage)
	}
	return w.Flush()
}

func currentMonthRange() (core.Date, core.Date) {
	now := time.Now().UTC()
	first := core.NewDate(now.Year(), int(now.Month()), 1)
	last := core.NewDate(now.Year(), int(now.Month())+1, 0)
	return first, last
}
