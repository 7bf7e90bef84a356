package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/massikone/massikone/internal/bills"
	"github.com/massikone/massikone/internal/history"
	"github.com/massikone/massikone/internal/locale"
	"github.com/massikone/massikone/internal/model"
)

func newBillCommand(opts *globalOptions) *cobra.Command {
	billCmd := &cobra.Command{
		Use:   "bill",
		Short: "Record and inspect bills",
	}
	billCmd.AddCommand(
		newBillAddCommand(opts),
		newBillUpdateCommand(opts),
		newBillShowCommand(opts),
		newBillListCommand(opts),
		newBillHistoryCommand(opts),
		newBillImagesCommand(opts),
		newBillImageCommand(opts),
	)
	return billCmd
}

// billFlags are the editable fields of a bill as command line flags.
type billFlags struct {
	description string
	paidDate    string
	paidUser    string
	amount      string
	debit       int
	credit      int
	closedDate  string
	closedType  string
	closedUser  string
	images      []string
	tags        []string
}

func (f *billFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.description, "description", "", "bill description")
	fs.StringVar(&f.paidDate, "paid-date", "", "payment date (2.1.2006 or 2006-01-02)")
	fs.StringVar(&f.paidUser, "paid-user", "", "email of the user who paid (default: the acting user)")
	fs.StringVar(&f.amount, "amount", "", "amount in euros, e.g. 12,34")
	fs.IntVar(&f.debit, "debit", 0, "debit account id")
	fs.IntVar(&f.credit, "credit", 0, "credit account id")
	fs.StringVar(&f.closedDate, "closed-date", "", "date the bill was closed")
	fs.StringVar(&f.closedType, "closed-type", "", "reimbursed or denied")
	fs.StringVar(&f.closedUser, "closed-user", "", "email of the user who closed the bill")
	fs.StringArrayVar(&f.images, "image", nil, "receipt image file (repeatable)")
	fs.StringArrayVar(&f.tags, "tag", nil, "tag (repeatable)")
}

// apply overrides the fields of in whose flags were set on the command
// line, or all of them when all is true.
func (f *billFlags) apply(ctx context.Context, a *app, fs *pflag.FlagSet, in *bills.BillInput, all bool) error {
	set := func(name string) bool { return all || fs.Changed(name) }
	var err error

	if set("description") {
		in.Description = f.description
	}
	if set("paid-date") {
		if in.PaidDate, err = locale.ParseDate(f.paidDate); err != nil {
			return err
		}
	}
	if fs.Changed("paid-user") {
		if in.PaidUserID, err = userID(ctx, a, f.paidUser); err != nil {
			return err
		}
	}
	if set("amount") {
		if in.AmountCents, err = locale.ParseAmount(f.amount); err != nil {
			return err
		}
	}
	if set("debit") {
		in.DebitAccountID = f.debit
	}
	if set("credit") {
		in.CreditAccountID = f.credit
	}
	if set("closed-date") {
		if in.ClosedDate, err = locale.ParseDate(f.closedDate); err != nil {
			return err
		}
	}
	if set("closed-type") {
		in.ClosedType = model.ClosedType(f.closedType)
	}
	if fs.Changed("closed-user") {
		if in.ClosedUserID, err = userID(ctx, a, f.closedUser); err != nil {
			return err
		}
	}
	if set("image") {
		in.Images = nil
		for _, path := range f.images {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			imageID, err := a.bills.StoreImage(ctx, data, "")
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			in.Images = append(in.Images, imageID)
		}
	}
	if set("tag") {
		in.Tags = f.tags
	}
	return nil
}

func userID(ctx context.Context, a *app, email string) (int, error) {
	if email == "" {
		return 0, nil
	}
	u, err := a.bills.UserByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func newBillAddCommand(opts *globalOptions) *cobra.Command {
	flags := &billFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new bill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.actingUser(ctx, opts.userEmail)
			if err != nil {
				return err
			}
			in := bills.BillInput{PaidUserID: user.ID}
			if err := flags.apply(ctx, a, cmd.Flags(), &in, true); err != nil {
				return err
			}
			billID, err := a.bills.Create(ctx, in, user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bill %d\n", billID)
			return nil
		},
	}
	flags.register(cmd.Flags())

	return cmd
}

func newBillUpdateCommand(opts *globalOptions) *cobra.Command {
	flags := &billFlags{}

	cmd := &cobra.Command{
		Use:   "update <bill-id>",
		Short: "Change a bill; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := parseIntArg(args[0], "bill id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.actingUser(ctx, opts.userEmail)
			if err != nil {
				return err
			}
			cur, err := a.bills.Get(ctx, billID)
			if err != nil {
				return err
			}
			in := inputFromDetail(cur)
			if !user.IsAdmin {
				// Payers edit only their own fields; the rest is kept as stored.
				in.PaidUserID, in.DebitAccountID, in.CreditAccountID = 0, 0, 0
				in.ClosedDate, in.ClosedType, in.ClosedUserID = "", "", 0
			}
			if err := flags.apply(ctx, a, cmd.Flags(), &in, false); err != nil {
				return err
			}
			if err := a.bills.Update(ctx, billID, in, user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated bill %d\n", billID)
			return nil
		},
	}
	flags.register(cmd.Flags())

	return cmd
}

func inputFromDetail(d bills.Detail) bills.BillInput {
	return bills.BillInput{
		Description:     d.Description,
		PaidDate:        d.PaidDate,
		PaidUserID:      d.PaidUserID,
		AmountCents:     d.AmountCents,
		DebitAccountID:  d.DebitAccountID,
		CreditAccountID: d.CreditAccountID,
		ClosedDate:      d.ClosedDate,
		ClosedType:      d.ClosedType,
		ClosedUserID:    d.ClosedUserID,
		Images:          d.Images,
		Tags:            d.Tags,
	}
}

func newBillShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <bill-id>",
		Short: "Show a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := parseIntArg(args[0], "bill id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.bills.Get(ctx, billID)
			if err != nil {
				return err
			}
			accts, err := a.accounts.AccountMap(ctx, a.period.ID)
			if err != nil {
				return err
			}
			printBill(cmd.OutOrStdout(), d, accts)
			return nil
		},
	}
}

func printBill(w io.Writer, d bills.Detail, accts map[int]model.Account) {
	account := func(id int) string {
		if id == 0 {
			return ""
		}
		if a, ok := accts[id]; ok {
			return fmt.Sprintf("%d %s", id, a.Title)
		}
		return fmt.Sprintf("%d", id)
	}

	fmt.Fprintf(w, "Bill %d\n", d.ID)
	fmt.Fprintf(w, "Description: %s\n", d.Description)
	fmt.Fprintf(w, "Paid:        %s %s\n", locale.FiFromISO(d.PaidDate), d.PaidUserName)
	fmt.Fprintf(w, "Amount:      %s\n", locale.FormatCents(d.AmountCents))
	fmt.Fprintf(w, "Debit:       %s\n", account(d.DebitAccountID))
	fmt.Fprintf(w, "Credit:      %s\n", account(d.CreditAccountID))
	if !d.IsOpen() {
		fmt.Fprintf(w, "Closed:      %s %s %s\n", locale.FiFromISO(d.ClosedDate), d.ClosedType, d.ClosedUserName)
	}
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(d.Tags, ", "))
	fmt.Fprintf(w, "Images:      %s\n", strings.Join(d.Images, ", "))
	fmt.Fprintf(w, "Created:     %s\n", locale.FiFromISO(d.CreatedDate))
	if d.PrevBillID != 0 || d.NextBillID != 0 {
		fmt.Fprintf(w, "Previous:    %s  Next: %s\n", billRef(d.PrevBillID), billRef(d.NextBillID))
	}
}

func billRef(id int) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

func newBillListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bills visible to the acting user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.actingUser(ctx, opts.userEmail)
			if err != nil {
				return err
			}
			list, tags, err := a.bills.List(ctx, user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range list {
				flag := " "
				if b.ImageMissing {
					flag = "!"
				}
				closed := "open"
				if b.ClosedDate != "" {
					closed = locale.FiFromISO(b.ClosedDate)
				}
				fmt.Fprintf(out, "%s%4d  %-10s  %10s  %-10s  %-20s  %s",
					flag, b.ID, locale.FiFromISO(b.PaidDate), locale.FormatCentsSigned(b.AmountCents),
					closed, b.PaidUserName, b.Description)
				if len(b.Tags) > 0 {
					fmt.Fprintf(out, " [%s]", strings.Join(b.Tags, " "))
				}
				fmt.Fprintln(out)
			}
			if len(tags) > 0 {
				fmt.Fprintf(out, "Tags: %s\n", strings.Join(tags, ", "))
			}
			return nil
		},
	}
}

func newBillHistoryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <bill-id>",
		Short: "Print the change history of a bill as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := parseIntArg(args[0], "bill id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.bills.Get(ctx, billID); err != nil {
				return err
			}
			entries, err := a.history.ForBill(ctx, billID)
			if err != nil {
				return err
			}
			return history.WriteCSV(cmd.OutOrStdout(), entries)
		},
	}
}

func newBillImagesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List bill images and bills that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			images, missing, err := a.bills.BillsForImages(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, img := range images {
				fmt.Fprintf(out, "%d-%d  %s  %s\n", img.BillID, img.BillImageNum, img.ImageID, bills.Shorten(img.Description))
			}
			if len(missing) > 0 {
				ids := make([]string, len(missing))
				for i, m := range missing {
					ids[i] = fmt.Sprintf("%d", m)
				}
				fmt.Fprintf(out, "Missing images: %s\n", strings.Join(ids, ", "))
			}
			return nil
		},
	}
}

func newBillImageCommand(opts *globalOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "image <image-id>",
		Short: "Write a stored image to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.bills.ImageData(ctx, args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0]
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("writing image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: the image id)")

	return cmd
}
