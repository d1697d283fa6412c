package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Products names the catalog products invoice lines are booked against.
type Products struct {
	Interest   string
	Penalty    string
	ServiceFee string
}

// Charges are the amounts billed on renewal or redemption.
type Charges struct {
	Principal  decimal.Decimal
	Interest   decimal.Decimal
	Penalty    decimal.Decimal
	ServiceFee decimal.Decimal
}

func (c Charges) Total() decimal.Decimal {
	return c.Principal.Add(c.Interest).Add(c.Penalty).Add(c.ServiceFee)
}

var one = decimal.NewFromInt(1)

func line(charge Charge, product, name string, price decimal.Decimal) Line {
	return Line{Charge: charge, Product: product, Name: name, Quantity: one, PriceUnit: price}
}

func need(product, what string) error {
	if product == "" {
		return fmt.Errorf("%w: %s", ErrProductNotConfigured, what)
	}
	return nil
}

// chargeLines bills each non-zero fee on its own product.
func chargeLines(p Products, c Charges, ticketNo string) ([]Line, error) {
	var out []Line
	if !c.Interest.IsZero() {
		if err := need(p.Interest, "interest income product"); err != nil {
			return nil, err
		}
		out = append(out, line(ChargeInterest, p.Interest, "Interest for "+ticketNo, c.Interest))
	}
	if !c.Penalty.IsZero() {
		if err := need(p.Penalty, "penalty product"); err != nil {
			return nil, err
		}
		out = append(out, line(ChargePenalty, p.Penalty, "Penalty for "+ticketNo, c.Penalty))
	}
	if !c.ServiceFee.IsZero() {
		if err := need(p.ServiceFee, "service fee product"); err != nil {
			return nil, err
		}
		out = append(out, line(ChargeServiceFee, p.ServiceFee, "Service Fee for "+ticketNo, c.ServiceFee))
	}
	return out, nil
}

// RenewalLines bills interest, penalty and service fee; principal stays outstanding.
func RenewalLines(p Products, c Charges, ticketNo string) ([]Line, error) {
	return chargeLines(p, c, ticketNo)
}

// RedemptionLines bills the principal first, booked on the service fee product or, failing
// that, the interest product, followed by the charge lines.
func RedemptionLines(p Products, c Charges, ticketNo string) ([]Line, error) {
	principalProduct := p.ServiceFee
	if principalProduct == "" {
		principalProduct = p.Interest
	}
	if principalProduct == "" {
		return nil, fmt.Errorf("%w: configure at least one service product to invoice principal", ErrProductNotConfigured)
	}
	out := []Line{line(ChargePrincipal, principalProduct, "Principal for "+ticketNo, c.Principal)}
	rest, err := chargeLines(p, c, ticketNo)
	if err != nil {
		return nil, err
	}
	return append(out, rest...), nil
}

// AuctionLines sells a forfeited item, optionally with a zero-priced service fee line when a
// service product is configured.
func AuctionLines(p Products, itemProduct, itemName, ticketNo string, price decimal.Decimal, addServiceFee bool) []Line {
	out := []Line{line(ChargeItem, itemProduct, fmt.Sprintf("%s (Ticket %s)", itemName, ticketNo), price)}
	if addServiceFee && p.ServiceFee != "" {
		out = append(out, line(ChargeServiceFee, p.ServiceFee, "Auction Service Fee", decimal.Zero))
	}
	return out
}

// New assembles a draft invoice.
func New(kind Kind, ticketID, branchID uint64, partnerID, origin string, lines []Line, now time.Time) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	y, m, d := now.UTC().Date()
	return &Invoice{
		InvoiceNo:   uuid.NewString(),
		TicketID:    ticketID,
		BranchID:    branchID,
		Kind:        kind,
		PartnerID:   partnerID,
		InvoiceDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Origin:      origin,
		State:       StateDraft,
		Total:       total.Round(2),
		Lines:       lines,
	}, nil
}

func (inv *Invoice) Post(now time.Time) error {
	if inv.State != StateDraft {
		return ErrNotPostable
	}
	t := now.UTC()
	inv.State, inv.PostedAt = StatePosted, &t
	return nil
}

// MarkPaid registers payment of the full residual.
func (inv *Invoice) MarkPaid(method, ref string, now time.Time) error {
	if inv.State != StatePosted {
		return ErrNotPayable
	}
	t := now.UTC()
	inv.State, inv.PaidAt = StatePaid, &t
	inv.PaymentMethod, inv.PaymentRef = method, ref
	return nil
}
