package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"houseclay-client/internal"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port/usecases_port"
)

type command struct {
	summary string
	build   func(args []string) (internal.Command, error)
}

var commandOrder = []string{"login", "logout", "whoami", "search", "property", "shortlist", "places", "draft"}

var commands = map[string]command{
	"login":     {summary: "log in or register with phone and OTP", build: buildLogin},
	"logout":    {summary: "end the current session", build: noArgs(logoutCmd)},
	"whoami":    {summary: "show the logged-in user", build: noArgs(whoamiCmd)},
	"search":    {summary: "search listings around a place", build: buildSearch},
	"property":  {summary: "show one listing: property [--contact] <id>", build: buildProperty},
	"shortlist": {summary: "shortlist list | toggle <id>", build: buildShortlist},
	"places":    {summary: "autocomplete a place name", build: buildPlaces},
	"draft":     {summary: "draft show | save | submit | clear", build: buildDraft},
}

func noArgs(fn internal.Command) func([]string) (internal.Command, error) {
	return func(args []string) (internal.Command, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
		}
		return fn, nil
	}
}

func buildLogin(args []string) (internal.Command, error) {
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	phone := flagSet.String("phone", "", "phone number, +91 is added when missing")
	addProperty := flagSet.Bool("add-property", false, "continue to the add-property screen after login")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	return func(ctx context.Context, app *internal.App) error {
		intent := domain.RedirectFromLoginPage
		if *addProperty {
			intent = domain.RedirectFromAddProperty
		}
		already, err := app.Session().RequireAuth(ctx, intent)
		if err != nil {
			return err
		}
		if already {
			fmt.Println("Already logged in.")
			return nil
		}
		return interactiveLogin(ctx, app, *phone)
	}, nil
}

func interactiveLogin(ctx context.Context, app *internal.App, phone string) error {
	flow := app.AuthFlow()
	in := bufio.NewScanner(os.Stdin)
	prompt := func(label string) (string, error) {
		fmt.Print(label)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return "", err
			}
			return "", errors.New("input closed")
		}
		return strings.TrimSpace(in.Text()), nil
	}

	if err := flow.Start(ctx); err != nil {
		return err
	}
	defer flow.Close()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		view := flow.View()
		switch view.Step {
		case domain.AuthStepPhone:
			if phone == "" {
				var err error
				if phone, err = prompt("Phone number: "); err != nil {
					return err
				}
			}
			flow.SetPhone(phone)
			phone = ""
			if err := flow.SubmitPhone(ctx); err != nil {
				fmt.Println(errorText(flow.View(), err))
			}

		case domain.AuthStepCreateUser:
			name, err := prompt("Name: ")
			if err != nil {
				return err
			}
			email, err := prompt("Email: ")
			if err != nil {
				return err
			}
			flow.SetName(name)
			flow.SetEmail(email)
			if err := flow.SubmitRegistration(ctx); err != nil {
				fmt.Println(errorText(flow.View(), err))
			}

		case domain.AuthStepOTP:
			code, err := prompt(otpPrompt(view))
			if err != nil {
				return err
			}
			if code == "r" {
				if err := flow.Resend(ctx); err != nil {
					fmt.Println(errorText(flow.View(), err))
				}
				continue
			}
			enterCode(flow, code)
			if err := flow.SubmitOTP(ctx); err != nil {
				fmt.Println(errorText(flow.View(), err))
			}

		case domain.AuthStepLoggedIn:
			app.Notifier().Success("Logged in", "")
			return nil

		default:
			return errors.New("login cancelled")
		}
	}
}

// enterCode раскладывает введённый код по слотам, по одному символу на слот.
func enterCode(flow interface{ EnterDigit(slot int, value string) bool }, code string) {
	slot := 0
	for _, r := range strings.TrimSpace(code) {
		flow.EnterDigit(slot, string(r))
		slot++
	}
}

func otpPrompt(view usecases_port.AuthFlowView) string {
	if view.CanResend {
		return fmt.Sprintf("OTP sent to %s (type r to resend): ", view.Form.PhoneNumber)
	}
	return fmt.Sprintf("OTP sent to %s (resend in %ds): ", view.Form.PhoneNumber, view.Form.ResendSecondsRemaining)
}

func errorText(view usecases_port.AuthFlowView, err error) string {
	if view.Error != "" {
		return view.Error
	}
	return err.Error()
}

func logoutCmd(ctx context.Context, app *internal.App) error {
	if err := app.Session().Logout(ctx); err != nil {
		app.Notifier().Error("Logout failed", domain.NormalizeError(err))
		return err
	}
	app.Notifier().Success("Logged out", "")
	return nil
}

func whoamiCmd(ctx context.Context, app *internal.App) error {
	detail, err := app.Session().RefreshUser(ctx)
	if errors.Is(err, domain.ErrAuthRequired) {
		fmt.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return errors.New(domain.NormalizeError(err))
	}
	p := detail.Profile
	fmt.Printf("%s <%s> %s\n", p.Name, p.EmailID, p.PhoneNo)
	fmt.Printf("connects: %d, listings: %d, shortlisted: %d\n", p.ConnectBal, len(detail.OwnedProperties), len(detail.ShortlistedProperties))
	return nil
}

func buildSearch(args []string) (internal.Command, error) {
	flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
	place := flagSet.String("place", "", "place to search around (first autocomplete match)")
	lat := flagSet.Float64("lat", 0, "latitude, used with --lon instead of --place")
	lon := flagSet.Float64("lon", 0, "longitude")
	category := flagSet.String("category", "", "RENT, RESALE or FLATMATE (default: last used)")
	pages := flagSet.Int("pages", 1, "number of pages to load")
	bhk := flagSet.String("bhk", "", "BHK type filter, e.g. 2BHK")
	maxPrice := flagSet.Int64("max-price", 0, "maximum rent or price")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	return func(ctx context.Context, app *internal.App) error {
		sel := app.State().Search
		switch {
		case *place != "":
			loc, err := resolvePlace(ctx, app, *place)
			if err != nil {
				return err
			}
			sel = sel.WithLocation(loc)
		case flagSet.Changed("lat") || flagSet.Changed("lon"):
			sel = sel.WithLocation(domain.Location{Name: fmt.Sprintf("%.5f,%.5f", *lat, *lon), Latitude: *lat, Longitude: *lon})
		}
		if sel.Location.Name == "" {
			return errors.New("no location: pass --place or --lat/--lon")
		}
		if !sel.Location.Valid() {
			return fmt.Errorf("invalid coordinates %f,%f", sel.Location.Latitude, sel.Location.Longitude)
		}
		if *category != "" {
			c, err := domain.ParsePropertyCategory(*category)
			if err != nil {
				return err
			}
			sel.Category = c
		}
		if flagSet.Changed("bhk") {
			sel.Filters.BHKType = *bhk
		}
		if flagSet.Changed("max-price") {
			sel.Filters.MaxPrice = *maxPrice
		}
		if err := app.SaveSearchSelection(ctx, sel); err != nil {
			return err
		}

		feed := app.NewSearchFeed()
		defer feed.Close()
		if err := feed.SetQuery(ctx, sel.Query(app.SearchPageSize())); err != nil {
			return errors.New(domain.NormalizeError(err))
		}
		for i := 1; i < *pages; i++ {
			issued, err := feed.LoadMore(ctx)
			if err != nil {
				return errors.New(domain.NormalizeError(err))
			}
			if !issued {
				break
			}
		}

		snap := feed.Snapshot()
		fmt.Printf("%s near %s: %d of %d\n", sel.Category, sel.Location.Name, len(snap.Page.Items), snap.Page.TotalElements)
		for _, item := range snap.Page.Items {
			printListing(app, item)
		}
		return nil
	}, nil
}

func resolvePlace(ctx context.Context, app *internal.App, text string) (domain.Location, error) {
	suggestions, err := app.Places().Autocomplete(ctx, text)
	if err != nil {
		return domain.Location{}, err
	}
	if len(suggestions) == 0 {
		return domain.Location{}, fmt.Errorf("no places match %q", text)
	}
	return app.Places().Resolve(ctx, suggestions[0].PlaceID)
}

func printListing(app *internal.App, item domain.PropertyListing) {
	mark := " "
	if app.Shortlist().IsShortlisted(item.PropertyID) {
		mark = "*"
	}
	amount := "-"
	if v := item.Amount(); v > 0 {
		amount = fmt.Sprintf("₹%.0f", v)
	}
	fmt.Printf("%s %-12s %-6s %-12s %10s  %s\n", mark, item.PropertyID, item.BHKType, item.PropertyType, amount, item.LocationOrSocietyName)
}

func buildProperty(args []string) (internal.Command, error) {
	flagSet := pflag.NewFlagSet("property", pflag.ContinueOnError)
	contact := flagSet.Bool("contact", false, "reveal the owner's contact (spends one connect)")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() != 1 {
		return nil, errors.New("usage: property [--contact] <id>")
	}
	id := flagSet.Arg(0)
	return func(ctx context.Context, app *internal.App) error {
		app.Navigator().Open("/property/" + id)
		detail, err := app.Details().Get(ctx, id)
		if err != nil {
			return errors.New(domain.NormalizeError(err))
		}
		printListing(app, detail.Listing)
		fmt.Printf("views: %d, shortlisted by: %d\n", detail.ViewUserCount, detail.ShortlistUserCount)
		if detail.Owner != nil {
			fmt.Printf("owner: %s %s %s\n", detail.Owner.Name, detail.Owner.PhoneNo, detail.Owner.EmailID)
		}
		if !*contact {
			return nil
		}
		result, err := app.Details().ContactOwner(ctx, id)
		if errors.Is(err, domain.ErrAuthRequired) {
			fmt.Println("Log in to contact the owner.")
			return nil
		}
		if err != nil {
			return errors.New(domain.NormalizeError(err))
		}
		fmt.Printf("owner contact: %s %s %s (connects left: %d)\n", result.Owner.Name, result.Owner.PhoneNo, result.Owner.EmailID, result.ConnectBal)
		return nil
	}, nil
}

func buildShortlist(args []string) (internal.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: shortlist list | toggle <id>")
	}
	switch args[0] {
	case "list":
		return func(ctx context.Context, app *internal.App) error {
			items, err := app.Shortlist().FetchAll(ctx)
			if err != nil {
				return errors.New(domain.NormalizeError(err))
			}
			if len(items) == 0 && !app.State().Session.IsAuthenticated {
				fmt.Println("Not logged in.")
				return nil
			}
			for _, item := range items {
				printListing(app, item)
			}
			return nil
		}, nil
	case "toggle":
		if len(args) != 2 {
			return nil, errors.New("usage: shortlist toggle <id>")
		}
		id := args[1]
		return func(ctx context.Context, app *internal.App) error {
			listing := domain.PropertyListing{PropertyID: id}
			if detail, err := app.Details().Get(ctx, id); err == nil {
				listing = detail.Listing
			}
			_, err := app.Shortlist().Toggle(ctx, listing)
			if errors.Is(err, domain.ErrAuthRequired) {
				fmt.Println("Log in first: houseclay-client login")
				return nil
			}
			return err
		}, nil
	}
	return nil, fmt.Errorf("unknown shortlist command %q", args[0])
}

func buildPlaces(args []string) (internal.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: places <text>")
	}
	text := strings.Join(args, " ")
	return func(ctx context.Context, app *internal.App) error {
		suggestions, err := app.Places().Autocomplete(ctx, text)
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Printf("%s\t%s\n", s.PlaceID, s.Description)
		}
		return nil
	}, nil
}

func buildDraft(args []string) (internal.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: draft show | save [flags] | submit --kind <kind> | clear --kind <kind>")
	}
	flagSet := pflag.NewFlagSet("draft", pflag.ContinueOnError)
	kind := flagSet.String("kind", string(domain.DraftListProperty), "listProperty or editProperty")
	category := flagSet.String("category", string(domain.CategoryRent), "RENT, RESALE or FLATMATE")
	propertyID := flagSet.String("property", "", "property id for editProperty drafts")
	step := flagSet.Int("step", 0, "form step")
	fields := flagSet.StringToString("field", nil, "form field, e.g. --field bhkType=2BHK")
	if err := flagSet.Parse(args[1:]); err != nil {
		return nil, err
	}
	draftKind := domain.DraftKind(*kind)
	if draftKind != domain.DraftListProperty && draftKind != domain.DraftEditProperty {
		return nil, fmt.Errorf("unknown draft kind %q", *kind)
	}

	switch args[0] {
	case "show":
		return func(ctx context.Context, app *internal.App) error {
			for k, d := range app.State().Drafts {
				fmt.Printf("%s: %s step %d, %d fields, saved %s\n", k, d.Category, d.Step, len(d.Fields), d.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		}, nil
	case "save":
		return func(ctx context.Context, app *internal.App) error {
			c, err := domain.ParsePropertyCategory(*category)
			if err != nil {
				return err
			}
			draft := app.State().Drafts[draftKind]
			draft.Category = c
			draft.PropertyID = *propertyID
			draft.Step = *step
			merged := make(map[string]string, len(draft.Fields)+len(*fields))
			for k, v := range draft.Fields {
				merged[k] = v
			}
			for k, v := range *fields {
				merged[k] = v
			}
			draft.Fields = merged
			draft.UpdatedAt = time.Now().UTC()
			return app.SaveDraft(ctx, draftKind, draft)
		}, nil
	case "submit":
		return func(ctx context.Context, app *internal.App) error {
			result, err := app.Listings().Submit(ctx, draftKind)
			if errors.Is(err, domain.ErrAuthRequired) {
				fmt.Println("Log in to publish the draft: houseclay-client login --add-property")
				return nil
			}
			if err != nil {
				return errors.New(domain.NormalizeError(err))
			}
			fmt.Printf("property %s: %s\n", result.PropertyID, result.Message)
			return nil
		}, nil
	case "clear":
		return func(ctx context.Context, app *internal.App) error {
			return app.ClearDraft(ctx, draftKind)
		}, nil
	}
	return nil, fmt.Errorf("unknown draft command %q", args[0])
}
