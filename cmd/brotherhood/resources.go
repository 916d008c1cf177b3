package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lebanesebrotherhood/brotherhood/internal/directory"
	"github.com/lebanesebrotherhood/brotherhood/internal/drive"
	"github.com/lebanesebrotherhood/brotherhood/internal/events"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/meetings"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func table(header string, rows func(w *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func (a *app) directory(ctx context.Context) (*directory.Directory, error) {
	s, client, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return directory.New(s, client, a.logger), nil
}

func runUsers(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("users")
	section := fs.String("section", "", "only members of this section")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var filter membership.SectionID
	if *section != "" {
		id, err := membership.ParseSection(*section)
		if err != nil {
			return err
		}
		filter = id
	}

	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	users, err := dir.Users(ctx, filter)
	if err != nil {
		return err
	}
	return table("ID\tNAME\tEMAIL\tSECTIONS", func(w *tabwriter.Writer) {
		for _, u := range users {
			names := make([]string, 0, len(u.Sections))
			for _, m := range u.Sections {
				names = append(names, m.Name)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, strings.Join(names, ", "))
		}
	})
}

func runAddUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add-user")
	var (
		name     = fs.String("name", "", "full name")
		email    = fs.String("email", "", "email")
		phone    = fs.String("phone", "", "phone")
		password = fs.String("password", "", "initial password")
		admin    = fs.Bool("admin", false, "grant global admin")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	if err := dir.CreateUser(ctx, gateway.NewUser{
		Name:          *name,
		Email:         *email,
		Phone:         *phone,
		Password:      *password,
		IsGlobalAdmin: *admin,
	}); err != nil {
		return err
	}
	fmt.Println("user created")
	return nil
}

func runDeleteUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete-user")
	id := fs.Int64("id", 0, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("--id is required")
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	if err := dir.DeleteUser(ctx, *id); err != nil {
		return err
	}
	fmt.Println("user deleted")
	return nil
}

func (a *app) events(ctx context.Context) (*events.Service, error) {
	s, client, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return events.NewService(s, client, a.logger), nil
}

func runEvents(ctx context.Context, a *app, args []string) error {
	svc, err := a.events(ctx)
	if err != nil {
		return err
	}
	list, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if err := table("DATE\tTITLE\tTYPE\tSPENT\tREVENUE\tNET", func(w *tabwriter.Writer) {
		for _, ev := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ev.EventDate, ev.Title, ev.Type,
				ev.TotalSpent.StringFixed(2), ev.TotalRevenue.StringFixed(2), ev.Net().StringFixed(2))
		}
	}); err != nil {
		return err
	}
	spent, revenue, net := events.Totals(list)
	fmt.Printf("\ntotal spent %s, revenue %s, net %s\n", spent.StringFixed(2), revenue.StringFixed(2), net.StringFixed(2))
	return nil
}

func parseAmount(flagName, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", flagName, err)
	}
	return d, nil
}

func runAddEvent(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add-event")
	var (
		title       = fs.String("title", "", "event title")
		kind        = fs.String("type", "", "event type")
		description = fs.String("description", "", "description")
		date        = fs.String("date", "", "event date YYYY-MM-DD (default today)")
		spent       = fs.String("spent", "0", "total spent")
		revenue     = fs.String("revenue", "0", "total revenue")
		notes       = fs.String("notes", "", "notes")
		link        = fs.String("link", "", "drive link")
		shared      = fs.Bool("shared", false, "mark as shared across sections")
		sections    = fs.String("sections", "", "comma separated sections; shared selects all")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := events.Draft{
		Title:       *title,
		Type:        *kind,
		Description: *description,
		Notes:       *notes,
		DriveLink:   *link,
		SharedEvent: *shared,
	}
	var err error
	if d.TotalSpent, err = parseAmount("spent", *spent); err != nil {
		return err
	}
	if d.TotalRevenue, err = parseAmount("revenue", *revenue); err != nil {
		return err
	}
	if *date != "" {
		if d.EventDate, err = membership.ParseDate(*date); err != nil {
			return err
		}
	}
	for _, raw := range strings.Split(*sections, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := membership.ParseSection(raw)
		if err != nil {
			return err
		}
		d.Sections = append(d.Sections, id)
	}

	svc, err := a.events(ctx)
	if err != nil {
		return err
	}
	ev, err := svc.Create(ctx, d)
	if err != nil {
		return err
	}
	fmt.Printf("event %d created for %s\n", ev.ID, ev.EventDate)
	return nil
}

func runShops(ctx context.Context, a *app, args []string) error {
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	shops, err := dir.Shops(ctx)
	if err != nil {
		return err
	}
	return table("NAME\tOWNER\tPHONE\tLOCATION", func(w *tabwriter.Writer) {
		for _, s := range shops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Owner, s.Phone, s.Location)
		}
	})
}

func runAddShop(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add-shop")
	var (
		name        = fs.String("name", "", "shop name")
		owner       = fs.String("owner", "", "owner")
		phone       = fs.String("phone", "", "phone")
		location    = fs.String("location", "", "location")
		description = fs.String("description", "", "description")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	shop, err := dir.CreateShop(ctx, gateway.ShopInput{
		Name:        *name,
		Owner:       *owner,
		Phone:       *phone,
		Location:    *location,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("shop %d created\n", shop.ID)
	return nil
}

func runDrive(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("drive: expected list, reveal, add or delete")
	}
	s, client, err := a.session(ctx)
	if err != nil {
		return err
	}
	vault := drive.NewVault(s, client, a.logger)

	fs := newFlagSet("drive " + args[0])
	switch args[0] {
	case "list":
		search := fs.String("search", "", "filter by title or email")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		accounts, err := vault.List(ctx, *search)
		if err != nil {
			return err
		}
		return table("ID\tTITLE\tEMAIL", func(w *tabwriter.Writer) {
			for _, acc := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\n", acc.ID, acc.Title, acc.Email)
			}
		})
	case "reveal", "delete":
		id := fs.Int64("id", 0, "account id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if args[0] == "delete" {
			if err := vault.Delete(ctx, *id); err != nil {
				return err
			}
			fmt.Println("account deleted")
			return nil
		}
		password, err := vault.Reveal(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Println(password)
		return nil
	case "add":
		var (
			title    = fs.String("title", "", "label")
			email    = fs.String("email", "", "account email")
			password = fs.String("password", "", "account password")
		)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		acc, err := vault.Create(ctx, *title, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("account %d stored\n", acc.ID)
		return nil
	default:
		return fmt.Errorf("drive: unknown action %q", args[0])
	}
}

func (a *app) archive(ctx context.Context) (*meetings.Archive, error) {
	s, client, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return meetings.NewArchive(s, client, a.logger), nil
}

func runMeetings(ctx context.Context, a *app, args []string) error {
	archive, err := a.archive(ctx)
	if err != nil {
		return err
	}
	listing := archive.Load(ctx)
	if listing.Degraded {
		fmt.Fprintln(os.Stderr, "warning: meetings unavailable:", describe(listing.Err))
	}
	for _, e := range listing.Entries {
		marker := ""
		if e.Editable {
			marker = " (editable)"
		}
		fmt.Printf("%s%s\n", e.Title, marker)
		if len(e.Links) == 0 {
			fmt.Println("  no meetings yet")
		}
		for _, l := range e.Links {
			fmt.Printf("  %s\n", l)
		}
	}
	return nil
}

func runSetMeeting(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("set-meeting")
	var (
		section = fs.String("section", "", "chabiba, tala2e3 or forsan")
		link    = fs.String("link", "", "drive folder link")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := membership.ParseSection(*section)
	if err != nil {
		return err
	}
	archive, err := a.archive(ctx)
	if err != nil {
		return err
	}
	saveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := archive.SaveLink(saveCtx, id, *link); err != nil {
		return err
	}
	fmt.Println("meeting link saved")
	return nil
}
