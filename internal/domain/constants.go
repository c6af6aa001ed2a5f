package domain

// ProviderMTNMoMo identifies payments handled by the MTN Mobile Money integration.
const ProviderMTNMoMo = "mtn_momo"

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

const (
	PaymentStateCreated   = "CREATED"
	PaymentStatePending   = "PENDING"
	PaymentStateConfirmed = "CONFIRMED"
	PaymentStateFailed    = "FAILED"
)

const (
	RefundStateCreated = "CREATED"
	RefundStateTransit = "TRANSIT"
	RefundStateDone    = "DONE"
	RefundStateFailed  = "FAILED"
)

const (
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusRefunded = "REFUNDED"
	OrderStatusCanceled = "CANCELED"
)

// Transaction states as reported by the MoMo API.
const (
	MomoStatusSuccessful = "SUCCESSFUL"
	MomoStatusFailed     = "FAILED"
)
