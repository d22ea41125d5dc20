package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Sternrassler/storefront-client/pkg/views"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderPage writes the status message of a page that is not populated
// and reports whether the caller should stop.
func renderPage(w io.Writer, p views.Page) bool {
	if p.Ready() {
		return false
	}
	fmt.Fprintln(w, p.Message)
	return true
}

func renderCards(w io.Writer, cards []views.ProductCard) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Price, c.Rating)
	}
	tw.Flush()
}

func renderCategories(w io.Writer, v views.CategoryList) {
	if renderPage(w, v.Page) {
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SLUG\tNAME\tPRODUCTS\tDESCRIPTION")
	for _, c := range v.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Slug, c.Name, c.ProductCount, c.Description)
	}
	tw.Flush()
}

func renderCategory(w io.Writer, v views.Category) {
	if v.Name != "" {
		fmt.Fprintln(w, v.Name)
		if v.Description != "" {
			fmt.Fprintln(w, v.Description)
		}
		fmt.Fprintln(w)
	}
	if renderPage(w, v.Page) {
		return
	}
	renderCards(w, v.Products)
}

func renderProductList(w io.Writer, v views.ProductList) {
	if renderPage(w, v.Page) {
		return
	}
	if v.Query != "" {
		fmt.Fprintf(w, "Results for %q\n\n", v.Query)
	}
	renderCards(w, v.Products)
}

func renderFields(w io.Writer, title string, fields []views.Field) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := newTable(w)
	for _, f := range fields {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Label, f.Value)
	}
	tw.Flush()
}

func renderProductDetail(w io.Writer, v views.ProductDetail) {
	if renderPage(w, v.Page) {
		return
	}
	fmt.Fprintf(w, "%s  %s  (rating %s)\n", v.Name, v.Price, v.Rating)
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}
	renderFields(w, "Details", v.Details)
	renderFields(w, "Nutrition", v.Nutrition)

	if len(v.Reviews) > 0 {
		fmt.Fprintln(w, "\nReviews")
		for _, r := range v.Reviews {
			fmt.Fprintf(w, "  %s (%s) %s: %s\n", r.User, r.Rating, r.Date, r.Comment)
		}
	}
	if len(v.Related) > 0 {
		fmt.Fprintln(w, "\nRelated products")
		renderCards(w, v.Related)
	}
}

func renderCart(w io.Writer, v views.Cart) {
	if renderPage(w, v.Page) {
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range v.Lines {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n", l.ID, l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.Subtotal)
	}
	fmt.Fprintf(tw, "\t\tTotal\t%d\t\t%s\n", v.ItemCount, v.Total)
	tw.Flush()
}

func renderWishlist(w io.Writer, v views.Wishlist) {
	if renderPage(w, v.Page) {
		return
	}
	renderCards(w, v.Items)
}

func renderOrderRows(w io.Writer, rows []views.OrderRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Date, o.OrderStatus, o.ItemCount, o.Total)
	}
	tw.Flush()
}

func renderOrders(w io.Writer, v views.OrderList) {
	if renderPage(w, v.Page) {
		return
	}
	renderOrderRows(w, v.Orders)
}

func renderOrderDetail(w io.Writer, v views.OrderDetail) {
	if renderPage(w, v.Page) {
		return
	}
	fmt.Fprintf(w, "Order %s  %s  %s\n", v.ID, v.Date, v.OrderStatus)
	if v.ShippingAddress != "" {
		fmt.Fprintf(w, "Ship to: %s\n", v.ShippingAddress)
	}
	if v.ContactInfo != "" {
		fmt.Fprintf(w, "Contact: %s\n", v.ContactInfo)
	}

	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE")
	for _, l := range v.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", l.Name, l.Quantity, l.Price)
	}
	fmt.Fprintf(tw, "Total\t%d\t%s\n", v.ItemCount, v.Total)
	tw.Flush()

	if len(v.Timeline) > 0 {
		fmt.Fprintln(w, "\nTimeline")
		tw = newTable(w)
		for _, step := range v.Timeline {
			fmt.Fprintf(tw, "  [%s]\t%s\t%s\t%s\n", step.Status, step.Title, step.Description, step.Timestamp)
		}
		tw.Flush()
	}
}

func renderDashboard(w io.Writer, v views.Dashboard) {
	if renderPage(w, v.Page) {
		return
	}
	fmt.Fprintf(w, "Orders: %d\nSpent:  %s\n", v.TotalOrders, v.TotalSpent)
	if len(v.RecentOrders) > 0 {
		fmt.Fprintln(w, "\nRecent orders")
		renderOrderRows(w, v.RecentOrders)
	}
	if len(v.SpendingTrends) > 0 {
		fmt.Fprintln(w, "\nSpending")
		tw := newTable(w)
		for _, s := range v.SpendingTrends {
			fmt.Fprintf(tw, "  %s\t%s\n", s.Month, s.Amount)
		}
		tw.Flush()
	}
}

func renderAddressRows(w io.Writer, rows []views.AddressRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tLABEL\tADDRESS\tDEFAULT")
	for _, a := range rows {
		def := ""
		if a.Default {
			def = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Label, a.Line, def)
	}
	tw.Flush()
}

func renderAddresses(w io.Writer, v views.Addresses) {
	if renderPage(w, v.Page) {
		return
	}
	renderAddressRows(w, v.Addresses)
}

func renderCheckout(w io.Writer, v views.Checkout) {
	if renderPage(w, v.Page) {
		return
	}
	renderCart(w, v.Cart)

	fmt.Fprintln(w, "\nDelivery times")
	if v.SlotsMessage != "" {
		fmt.Fprintln(w, v.SlotsMessage)
	}
	for _, s := range v.DeliveryTimes {
		state := "available"
		if !s.Available {
			state = "full"
		}
		fmt.Fprintf(w, "  %s (%s)\n", s.Time, state)
	}

	fmt.Fprintln(w, "\nAddresses")
	if len(v.Addresses) == 0 {
		fmt.Fprintln(w, "No saved addresses.")
		return
	}
	renderAddressRows(w, v.Addresses)
}

func renderAccount(w io.Writer, v views.Account) {
	if renderPage(w, v.Page) {
		return
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Name\t%s\n", v.Name)
	fmt.Fprintf(tw, "Email\t%s\n", v.Email)
	if v.Phone != "" {
		fmt.Fprintf(tw, "Phone\t%s\n", v.Phone)
	}
	if v.IsStaff {
		fmt.Fprintln(tw, "Role\tAdmin")
	}
	tw.Flush()
}

func renderAdminUsers(w io.Writer, v views.AdminUsers) {
	if renderPage(w, v.Page) {
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range v.Users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.Active)
	}
	tw.Flush()
}
