package consts

type CertificateStatus string

const (
	CertificateStatusIssued  CertificateStatus = "issued"
	CertificateStatusSent    CertificateStatus = "sent"
	CertificateStatusFailed  CertificateStatus = "failed"
	CertificateStatusExpired CertificateStatus = "expired"
)

type EmailOutcome string

const (
	EmailOutcomeSent      EmailOutcome = "sent"
	EmailOutcomeDelivered EmailOutcome = "delivered"
	EmailOutcomeFailed    EmailOutcome = "failed"
	EmailOutcomeBounced   EmailOutcome = "bounced"
)
