package transaction

import "fmt"

// SubjectKind identifies which of the three money-moving categories a flow
// concerns. The three flows share one implementation; only the endpoint
// paths differ.
type SubjectKind string

const (
	// KindInvestment is a direct lot investment.
	KindInvestment SubjectKind = "investment"
	// KindInstallment is a monthly installment payment on a savings plan.
	KindInstallment SubjectKind = "installment_payment"
	// KindAuction is an auction-winner payment.
	KindAuction SubjectKind = "auction_payment"
)

type kindPaths struct {
	initiate string
	confirm  string
}

var pathsByKind = map[SubjectKind]kindPaths{
	KindInvestment: {
		initiate: "/investments/%s/payment",
		confirm:  "/investments/%s/payment/confirm",
	},
	KindInstallment: {
		initiate: "/installments/%s/payment",
		confirm:  "/installments/%s/payment/confirm",
	},
	KindAuction: {
		initiate: "/auctions/%s/payment",
		confirm:  "/auctions/%s/payment/confirm",
	},
}

// Valid reports whether k is one of the supported subject kinds.
func (k SubjectKind) Valid() bool {
	_, ok := pathsByKind[k]
	return ok
}

func (k SubjectKind) initiatePath(subjectID string) string {
	return fmt.Sprintf(pathsByKind[k].initiate, subjectID)
}

func (k SubjectKind) confirmPath(subjectID string) string {
	return fmt.Sprintf(pathsByKind[k].confirm, subjectID)
}
