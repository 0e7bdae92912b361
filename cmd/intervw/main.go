// Command intervw is a terminal client for the intervw API.
//
//	intervw [-server URL] [-token TOKEN] <command> [flags]
//
// Commands:
//
//	register -username NAME -email EMAIL     create an account (prompts for password)
//	login    -email EMAIL                    log in (prompts for password)
//	submit   -name -company -country -q ...  add a submission (-q repeats)
//	list     [-page N] [-limit N] [-search TEXT]
//	mine     [-search TEXT]
//	edit     -id ID [-name] [-company] [-country] [-q ...]
//	delete   -id ID
//
// register and login print the token; pass it back with -token or the
// INTERVW_TOKEN environment variable.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/sakif/intervw/internal/client"
	"github.com/sakif/intervw/internal/model"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// stdinIsTerminal is a test seam; piped input is read as a plain line.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// questions collects every -q flag in order.
type questions []string

func (q *questions) String() string { return strings.Join(*q, "; ") }

func (q *questions) Set(v string) error {
	*q = append(*q, v)
	return nil
}

type app struct {
	api *client.Client
	in  *bufio.Reader
	out io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	global := flag.NewFlagSet("intervw", flag.ContinueOnError)
	global.SetOutput(stdout)
	serverURL := global.String("server", envOr("INTERVW_SERVER", "http://localhost:8080"), "API base URL")
	token := global.String("token", os.Getenv("INTERVW_TOKEN"), "bearer token from register/login")
	timeout := global.Duration("timeout", 10*time.Second, "per-request timeout")
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	a := &app{
		api: client.New(*serverURL, client.WithToken(*token)),
		in:  bufio.NewReader(stdin),
		out: stdout,
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "register":
		return a.register(ctx, cmdArgs)
	case "login":
		return a.login(ctx, cmdArgs)
	case "submit":
		return a.submit(ctx, cmdArgs)
	case "list":
		return a.list(ctx, cmdArgs)
	case "mine":
		return a.mine(ctx, cmdArgs)
	case "edit":
		return a.edit(ctx, cmdArgs)
	case "delete":
		return a.delete(ctx, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("username", "", "account name (3-50 characters)")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.password()
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, *username, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s (%s)\n", res.User.Username, res.User.ID)
	a.printToken(res.Token)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.password()
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s\n", res.User.Username)
	a.printToken(res.Token)
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := a.flags("submit")
	name := fs.String("name", "", "interviewee name")
	company := fs.String("company", "", "company")
	country := fs.String("country", "", "country")
	var qs questions
	fs.Var(&qs, "q", "question (repeat for several)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sub, err := a.api.Create(ctx, model.SubmissionInput{
		Name: *name, Company: *company, Country: *country, Questions: qs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s\n", sub.ID)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 0, "page size (server default when 0)")
	search := fs.String("search", "", "show only matches in name, company or country")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.api.List(ctx, *page, *limit)
	if err != nil {
		return err
	}
	a.table(client.FilterSubmissions(p.Submissions, *search))
	fmt.Fprintf(a.out, "page %d of %d\n", p.CurrentPage, p.TotalPages)
	return nil
}

func (a *app) mine(ctx context.Context, args []string) error {
	fs := a.flags("mine")
	search := fs.String("search", "", "show only matches in name, company or country")
	if err := fs.Parse(args); err != nil {
		return err
	}

	subs, err := a.api.ListMine(ctx)
	if err != nil {
		return err
	}
	a.table(client.FilterSubmissions(subs, *search))
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	id := fs.String("id", "", "submission id")
	name := fs.String("name", "", "new name")
	company := fs.String("company", "", "new company")
	country := fs.String("country", "", "new country")
	var qs questions
	fs.Var(&qs, "q", "replacement question (repeat for several)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("edit: -id is required")
	}

	sub, err := a.api.Update(ctx, *id, model.SubmissionPatch{
		Name: *name, Company: *company, Country: *country, Questions: qs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated %s\n", sub.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	id := fs.String("id", "", "submission id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete: -id is required")
	}

	sub, err := a.api.Delete(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s (%s at %s)\n", sub.ID, sub.Name, sub.Company)
	return nil
}

// password reads a password without echo from a terminal, or a single
// line from piped input.
func (a *app) password() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	if stdinIsTerminal() {
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprintln(a.out)
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) printToken(token string) {
	fmt.Fprintf(a.out, "export INTERVW_TOKEN=%s\n", token)
}

func (a *app) table(subs []model.Submission) {
	if len(subs) == 0 {
		fmt.Fprintln(a.out, "no submissions")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tCOUNTRY\tQUESTIONS\tCREATED")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Name, s.Company, s.Country, len(s.Questions), s.CreatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
