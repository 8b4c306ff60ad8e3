package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/urfave/cli/v2"
)

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "print the persisted cart",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the raw snapshot as JSON"},
		},
		Action: showCart,
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:   "orders",
		Usage:  "print the order history",
		Action: showOrders,
	}
}

func showCart(c *cli.Context) error {
	cfg, log, err := setup(c, "storefront-cli")
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := newEngine(cfg, store, log)
	engine.Hydrate(c.Context)
	snap := engine.Snapshot()

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tCUSTOMIZATIONS\tQTY\tSUBTOTAL")
	for _, l := range snap.Items {
		names := make([]string, 0, len(l.Customizations))
		for _, cz := range l.Customizations {
			names = append(names, cz.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Name, strings.Join(names, ", "), l.Quantity, money.FormatNaira(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%d item(s), total %s\n", snap.TotalItems, money.FormatNaira(snap.TotalPrice))
	return err
}

func showOrders(c *cli.Context) error {
	cfg, log, err := setup(c, "storefront-cli")
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	history := newHistory(cfg, store)
	orders, err := history.List(c.Context)
	if err != nil {
		return err
	}
	summary, err := history.Summary(c.Context)
	if err != nil {
		return err
	}

	out := c.App.Writer
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tPLACED\tCUSTOMER\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Customer.Name, o.TotalItems(), money.FormatNaira(o.Total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%d order(s), total spent %s\n", summary.Count, money.FormatNaira(summary.TotalSpent))
	return err
}
