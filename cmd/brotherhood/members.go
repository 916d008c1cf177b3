package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/roster"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		email    = fs.String("email", "", "account email")
		password = fs.String("password", "", "password (defaults to BROTHERHOOD_PASSWORD)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("BROTHERHOOD_PASSWORD")
	}

	s, err := a.manager.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s>, session valid until %s\n",
		s.Identity.Name, s.Identity.Email, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := a.manager.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	s, _, err := a.session(ctx)
	if err != nil {
		return err
	}
	id := s.Identity
	fmt.Printf("%s <%s> (id %d)\n", id.Name, id.Email, id.ID)
	if id.IsGlobalAdmin {
		fmt.Println("global admin")
	}
	for _, g := range id.Roles {
		fmt.Printf("  %s: %s\n", g.SectionID.Name(), g.RoleName)
	}
	return nil
}

func runSections(ctx context.Context, a *app, args []string) error {
	_, client, err := a.session(ctx)
	if err != nil {
		return err
	}
	sections, err := client.Sections(ctx)
	if err != nil {
		return err
	}
	for _, s := range sections {
		fmt.Printf("%d\t%s\n", s.ID, s.Name)
	}
	return nil
}

// rosterView opens a view of the section flag after signing in.
func (a *app) rosterView(ctx context.Context, section string) (*roster.View, error) {
	id, err := membership.ParseSection(section)
	if err != nil {
		return nil, err
	}
	s, client, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return roster.New(s, client, id, roster.Options{Logger: a.logger})
}

func runMembers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("members", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		section = fs.String("section", "", "chabiba, tala2e3 or forsan")
		date    = fs.String("date", "", "as-of date YYYY-MM-DD (default today)")
		search  = fs.String("search", "", "filter by name")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var day membership.Date
	if *date != "" {
		parsed, err := membership.ParseDate(*date)
		if err != nil {
			return err
		}
		day = parsed
	}

	view, err := a.rosterView(ctx, *section)
	if err != nil {
		return err
	}
	if err := view.Load(ctx, day); err != nil {
		return err
	}

	snap := view.Snapshot()
	fmt.Printf("%s as of %s\n\n", snap.Section.Name(), snap.Date)
	members := view.Members(*search)
	if len(members) == 0 {
		fmt.Println("no members")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tPERIOD")
	for _, st := range members {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", st.UserID, st.Name, st.Email, st.RoleName, st.Range())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	open := make([]string, 0)
	for _, r := range view.Assignable() {
		open = append(open, r.Name)
	}
	if len(open) > 0 {
		fmt.Printf("\nassignable: %s\n", strings.Join(open, ", "))
	}
	return nil
}

type memberFlags struct {
	fs      *flag.FlagSet
	section *string
	user    *int64
}

func newMemberFlags(name string) memberFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return memberFlags{
		fs:      fs,
		section: fs.String("section", "", "chabiba, tala2e3 or forsan"),
		user:    fs.Int64("user", 0, "user id"),
	}
}

func (m memberFlags) parse(args []string) error {
	if err := m.fs.Parse(args); err != nil {
		return err
	}
	if *m.user <= 0 {
		return errors.New("--user is required")
	}
	return nil
}

// mutateMember loads today's roster so role availability is known, then applies change.
func mutateMember(ctx context.Context, a *app, m memberFlags, change func(*roster.View) error, done string) error {
	view, err := a.rosterView(ctx, *m.section)
	if err != nil {
		return err
	}
	if err := view.Load(ctx, membership.Date{}); err != nil {
		return err
	}
	if err := change(view); err != nil {
		return err
	}
	fmt.Println(done)
	return nil
}

func runAssign(ctx context.Context, a *app, args []string) error {
	m := newMemberFlags("assign")
	role := m.fs.String("role", "", "role id or name")
	if err := m.parse(args); err != nil {
		return err
	}
	id, err := membership.ParseRole(*role)
	if err != nil {
		return err
	}
	return mutateMember(ctx, a, m, func(v *roster.View) error {
		return v.Assign(ctx, *m.user, id)
	}, "role assigned")
}

func runRemoveRole(ctx context.Context, a *app, args []string) error {
	m := newMemberFlags("remove-role")
	if err := m.parse(args); err != nil {
		return err
	}
	return mutateMember(ctx, a, m, func(v *roster.View) error {
		return v.RemoveRole(ctx, *m.user)
	}, "role removed")
}

func runAddToSection(ctx context.Context, a *app, args []string) error {
	m := newMemberFlags("add-to-section")
	if err := m.parse(args); err != nil {
		return err
	}
	return mutateMember(ctx, a, m, func(v *roster.View) error {
		return v.AddToSection(ctx, *m.user)
	}, "member added")
}

func runLeaveSection(ctx context.Context, a *app, args []string) error {
	m := newMemberFlags("leave-section")
	if err := m.parse(args); err != nil {
		return err
	}
	return mutateMember(ctx, a, m, func(v *roster.View) error {
		return v.RemoveFromSection(ctx, *m.user)
	}, "member removed from section")
}
