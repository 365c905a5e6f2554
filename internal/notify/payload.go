package notify

import (
	"errors"

	"github.com/roach88/procount/internal/domain"
)

// Channel is the delivery medium of a notification.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Result messages returned without contacting the authority.
const (
	MsgNotConfigured = "Service not configured"
	MsgPhoneMissing  = "Customer phone number missing"
	MsgEmailMissing  = "Customer email missing"
)

var ErrNotConfigured = errors.New(MsgNotConfigured)

type Recipient struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty" validate:"required_without=Email"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type Message struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// GatewayPayload is the gateway a message goes out through. IsSystemGateway
// tells the authority to use the platform credentials.
type GatewayPayload struct {
	domain.GatewayConfig
	IsSystemGateway bool `json:"isSystemGateway"`
}

// Payload is the body of POST /notifications/send.
type Payload struct {
	Type      Channel        `json:"type" validate:"required,oneof=sms email"`
	Config    GatewayPayload `json:"config"`
	Recipient Recipient      `json:"recipient"`
	Message   Message        `json:"message"`
}

// Result is the authority's answer, or the local reason nothing was sent.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Resolve picks the gateway for channel.
//
// The company's own gateway wins when enabled. Otherwise the system gateway
// is used if the company allows it and the system gateway is enabled.
func Resolve(ch Channel, company domain.Company, sys domain.SystemIntegrations) (GatewayPayload, error) {
	var own, system *domain.GatewayConfig
	var allowSystem bool
	switch ch {
	case ChannelSMS:
		own, system, allowSystem = company.NotificationSettings.SMS, sys.SMSConfig, company.AllowSystemSMSGateway
	case ChannelEmail:
		own, system, allowSystem = company.NotificationSettings.Email, sys.EmailConfig, company.AllowSystemEmailGateway
	default:
		return GatewayPayload{}, ErrNotConfigured
	}

	if own != nil && own.Enabled {
		return GatewayPayload{GatewayConfig: *own}, nil
	}
	if allowSystem && system != nil && system.Enabled {
		return GatewayPayload{GatewayConfig: *system, IsSystemGateway: true}, nil
	}
	return GatewayPayload{}, ErrNotConfigured
}

// Build resolves the gateway and checks the recipient can be reached on ch.
// A failed check returns the Result to report instead of sending.
func Build(ch Channel, company domain.Company, sys domain.SystemIntegrations, to Recipient, msg Message) (Payload, *Result) {
	cfg, err := Resolve(ch, company, sys)
	if err != nil {
		return Payload{}, &Result{Message: MsgNotConfigured}
	}
	if ch == ChannelSMS && to.Phone == "" {
		return Payload{}, &Result{Message: MsgPhoneMissing}
	}
	if ch == ChannelEmail && to.Email == "" {
		return Payload{}, &Result{Message: MsgEmailMissing}
	}
	return Payload{Type: ch, Config: cfg, Recipient: to, Message: msg}, nil
}
