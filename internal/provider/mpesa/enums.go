package mpesa

// CommandID selects the Daraja command run by a B2C, reversal or status request.
type CommandID string

const (
	BusinessPayment        CommandID = "BusinessPayment"
	PromotionPayment       CommandID = "PromotionPayment"
	SalaryPayment          CommandID = "SalaryPayment"
	TransactionReversal    CommandID = "TransactionReversal"
	TransactionStatusQuery CommandID = "TransactionStatusQuery"
)

func (c CommandID) Valid() bool {
	switch c {
	case BusinessPayment, PromotionPayment, SalaryPayment, TransactionReversal, TransactionStatusQuery:
		return true
	}
	return false
}

func (c CommandID) String() string { return string(c) }

// b2cCommand narrows CommandID to the commands a B2C payment accepts
type b2cCommand CommandID

func (c b2cCommand) Valid() bool {
	switch CommandID(c) {
	case BusinessPayment, PromotionPayment, SalaryPayment:
		return true
	}
	return false
}

func (c b2cCommand) String() string { return string(c) }

// IdentifierType is the kind of party named by PartyA in a status query.
type IdentifierType string

const (
	MSISDN       IdentifierType = "1"
	TillNumber   IdentifierType = "2"
	OrgShortCode IdentifierType = "4"
)

func (t IdentifierType) Valid() bool {
	switch t {
	case MSISDN, TillNumber, OrgShortCode:
		return true
	}
	return false
}

func (t IdentifierType) String() string { return string(t) }

// TransactionType of an STK push. Only CustomerBuyGoodsOnline is sent.
type TransactionType string

const (
	CustomerBuyGoodsOnline TransactionType = "CustomerBuyGoodsOnline"
	CustomerPayBillOnline  TransactionType = "CustomerPayBillOnline"
)

func (t TransactionType) Valid() bool {
	return t == CustomerBuyGoodsOnline || t == CustomerPayBillOnline
}

func (t TransactionType) String() string { return string(t) }

// C2BResponseType tells Daraja what to do when the validation URL is unreachable.
type C2BResponseType string

const (
	C2BCompleted C2BResponseType = "Completed"
	C2BCancelled C2BResponseType = "Cancelled"
)

func (t C2BResponseType) Valid() bool {
	return t == C2BCompleted || t == C2BCancelled
}

func (t C2BResponseType) String() string { return string(t) }

// reversalReceiverIdentifierType is the only receiver type Daraja accepts for reversals.
const reversalReceiverIdentifierType = "11"
