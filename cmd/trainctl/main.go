// trainctl is the command-line client for the train booking ledger. It opens
// the same store as the API server (configured by the same environment
// variables) and runs one command per invocation:
//
//	trainctl trains
//	trainctl search --from "New York" --to Boston [--date 2024-05-01]
//	trainctl book --train T001 --name Alice --age 30 --gender F --phone 555 --email a@example.com --date 2024-05-01
//	trainctl cancel <booking-id>
//	trainctl show <booking-id>
//	trainctl mine --email a@example.com
//	trainctl status
//
// Failures print a one-line message and exit non-zero.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/pkordes/railbook/internal/app"
	"github.com/pkordes/railbook/internal/config"
	"github.com/pkordes/railbook/internal/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `Usage: trainctl <command> [flags]

Commands:
  trains                 list every train
  search                 find trains with free seats (--from, --to, --date)
  book                   book a seat (--train, --name, --age, --gender, --phone, --email, --date)
  cancel <booking-id>    cancel a booking
  show <booking-id>      show one booking
  mine                   list confirmed bookings for --email
  status                 ledger totals

Global flags:
  -v, --verbose          log at the configured LOG_LEVEL instead of warn
`

// command runs against an opened ledger. flags have already been parsed.
type command struct {
	flags *pflag.FlagSet
	run   func(ctx context.Context, rt *app.Runtime, out io.Writer, args []string) error
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	name := args[0]
	newCmd, ok := commands[name]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}
	cmd := newCmd()
	verbose := cmd.flags.BoolP("verbose", "v", false, "log at the configured LOG_LEVEL")
	cmd.flags.SetOutput(stderr)
	if err := cmd.flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !*verbose {
		cfg.LogLevel = "warn"
	}
	logger := app.NewLogger(cfg, stderr)

	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	return describe(cmd.run(ctx, rt, stdout, cmd.flags.Args()))
}

// describe replaces ledger errors with the messages shown to operators.
func describe(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNoSeats):
		return errors.New("no seats available on this train")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return errors.New("booking is already cancelled")
	case errors.Is(err, domain.ErrNotPersisted):
		var u unsaved
		if errors.As(err, &u) {
			return fmt.Errorf("booking %s was changed but could not be saved; check the data file", u.bookingID)
		}
		return errors.New("the change was applied but could not be saved; check the data file")
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s not found", subject(err))
	case errors.Is(err, domain.ErrValidation):
		parts := strings.Split(err.Error(), ": ")
		return fmt.Errorf("invalid input: %s", parts[len(parts)-1])
	}
	return err
}

// unsaved carries the id of a booking the ledger changed in memory but
// could not save.
type unsaved struct {
	bookingID string
	err       error
}

func (u unsaved) Error() string { return u.err.Error() }
func (u unsaved) Unwrap() error { return u.err }

// withBooking attaches bookingID to a not-persisted error.
func withBooking(bookingID string, err error) error {
	if bookingID == "" || !errors.Is(err, domain.ErrNotPersisted) {
		return err
	}
	return unsaved{bookingID: bookingID, err: err}
}

// subject returns the segment just before the sentinel in a wrapped error,
// e.g. `train "T9"` from `service.Ledger.Book: train "T9": not found`.
func subject(err error) string {
	parts := strings.Split(err.Error(), ": ")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return "record"
}

var commands = map[string]func() command{
	"trains": trainsCmd,
	"search": searchCmd,
	"book":   bookCmd,
	"cancel": cancelCmd,
	"show":   showCmd,
	"mine":   mineCmd,
	"status": statusCmd,
}

func trainsCmd() command {
	fs := pflag.NewFlagSet("trains", pflag.ContinueOnError)
	return command{flags: fs, run: func(_ context.Context, rt *app.Runtime, out io.Writer, _ []string) error {
		printTrains(out, rt.Ledger.Trains())
		return nil
	}}
}

func searchCmd() command {
	fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
	from := fs.String("from", "", "source station")
	to := fs.String("to", "", "destination station")
	date := fs.String("date", "", "journey date (accepted, does not filter)")
	return command{flags: fs, run: func(_ context.Context, rt *app.Runtime, out io.Writer, _ []string) error {
		if strings.TrimSpace(*from) == "" || strings.TrimSpace(*to) == "" {
			return errors.New("--from and --to are required")
		}
		trains := rt.Ledger.Search(strings.TrimSpace(*from), strings.TrimSpace(*to), *date)
		if len(trains) == 0 {
			fmt.Fprintln(out, "No trains found for this route.")
			return nil
		}
		printTrains(out, trains)
		return nil
	}}
}

func bookCmd() command {
	fs := pflag.NewFlagSet("book", pflag.ContinueOnError)
	train := fs.String("train", "", "train id")
	name := fs.String("name", "", "passenger name")
	age := fs.Int("age", 0, "passenger age")
	gender := fs.String("gender", "", "passenger gender")
	phone := fs.String("phone", "", "passenger phone")
	email := fs.String("email", "", "passenger email")
	date := fs.String("date", "", "journey date")
	return command{flags: fs, run: func(ctx context.Context, rt *app.Runtime, out io.Writer, _ []string) error {
		if strings.TrimSpace(*train) == "" {
			return errors.New("--train is required")
		}
		if strings.TrimSpace(*date) == "" {
			return errors.New("--date is required")
		}
		p := domain.NewPassenger(strings.TrimSpace(*name), *age,
			strings.TrimSpace(*gender), strings.TrimSpace(*phone), strings.TrimSpace(*email))
		if err := p.Validate(); err != nil {
			return err
		}
		b, err := rt.Ledger.Book(ctx, strings.TrimSpace(*train), p, strings.TrimSpace(*date))
		if err != nil {
			return withBooking(b.ID, err)
		}
		fmt.Fprintf(out, "Booking confirmed. Booking ID: %s\n", b.ID)
		return nil
	}}
}

func cancelCmd() command {
	fs := pflag.NewFlagSet("cancel", pflag.ContinueOnError)
	return command{flags: fs, run: func(ctx context.Context, rt *app.Runtime, out io.Writer, args []string) error {
		id, err := oneArg(args, "booking id")
		if err != nil {
			return err
		}
		if b, err := rt.Ledger.Cancel(ctx, id); err != nil {
			return withBooking(b.ID, err)
		}
		fmt.Fprintf(out, "Booking %s cancelled.\n", id)
		return nil
	}}
}

func showCmd() command {
	fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
	return command{flags: fs, run: func(_ context.Context, rt *app.Runtime, out io.Writer, args []string) error {
		id, err := oneArg(args, "booking id")
		if err != nil {
			return err
		}
		b, ok := rt.Ledger.Booking(id)
		if !ok {
			return fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
		}
		t, _ := rt.Ledger.Train(b.TrainID)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Booking\t%s\n", b.ID)
		fmt.Fprintf(tw, "Status\t%s\n", b.Status)
		fmt.Fprintf(tw, "Train\t%s %s\n", b.TrainID, t.Name)
		if t.ID != "" {
			fmt.Fprintf(tw, "Route\t%s → %s (%s-%s)\n", t.Source, t.Destination, t.DepartureTime, t.ArrivalTime)
		}
		fmt.Fprintf(tw, "Passenger\t%s, %d\n", b.Passenger.Name, b.Passenger.Age)
		fmt.Fprintf(tw, "Contact\t%s / %s\n", b.Passenger.Email, b.Passenger.Phone)
		fmt.Fprintf(tw, "Journey\t%s\n", b.JourneyDate)
		fmt.Fprintf(tw, "Booked\t%s\n", b.BookingDate)
		return tw.Flush()
	}}
}

func mineCmd() command {
	fs := pflag.NewFlagSet("mine", pflag.ContinueOnError)
	email := fs.String("email", "", "passenger email")
	return command{flags: fs, run: func(_ context.Context, rt *app.Runtime, out io.Writer, _ []string) error {
		if strings.TrimSpace(*email) == "" {
			return errors.New("--email is required")
		}
		bookings := rt.Ledger.PassengerBookings(strings.TrimSpace(*email))
		if len(bookings) == 0 {
			fmt.Fprintln(out, "No bookings found.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "BOOKING\tTRAIN\tJOURNEY\tPASSENGER\tSTATUS")
		for _, b := range bookings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.TrainID, b.JourneyDate, b.Passenger.Name, b.Status)
		}
		return tw.Flush()
	}}
}

func statusCmd() command {
	fs := pflag.NewFlagSet("status", pflag.ContinueOnError)
	return command{flags: fs, run: func(_ context.Context, rt *app.Runtime, out io.Writer, _ []string) error {
		st := rt.Reports.Status()
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Trains\t%d\n", st.TotalTrains)
		fmt.Fprintf(tw, "Bookings\t%d\n", st.TotalBookings)
		fmt.Fprintf(tw, "Confirmed\t%d\n", st.ConfirmedBookings)
		fmt.Fprintf(tw, "Cancelled\t%d\n", st.CancelledBookings)
		fmt.Fprintf(tw, "Available seats\t%d\n", st.AvailableSeats)
		return tw.Flush()
	}}
}

func printTrains(out io.Writer, trains []domain.Train) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFROM\tTO\tDEPART\tARRIVE\tSEATS\tPRICE")
	for _, t := range trains {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%.2f\n",
			t.ID, t.Name, t.Source, t.Destination, t.DepartureTime, t.ArrivalTime,
			t.AvailableSeats, t.TotalSeats, t.Price)
	}
	_ = tw.Flush()
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return strings.TrimSpace(args[0]), nil
}
