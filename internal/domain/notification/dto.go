package notification

import (
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

// CreateNotificationRequest is the input of the fan-out service. Type,
// Category and Priority default to info, general and medium.
type CreateNotificationRequest struct {
	Target    Target         `json:"-"`
	Type      Type           `json:"type" validate:"omitempty,oneof=info warning success error"`
	Category  Category       `json:"category"`
	Priority  Priority       `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Title     string         `json:"title" validate:"required,max=255"`
	Message   string         `json:"message" validate:"required,max=2000"`
	ActionURL string         `json:"action_url" validate:"omitempty,max=500"`
	Data      map[string]any `json:"data,omitempty"`
}

func (r *CreateNotificationRequest) Validate() error {
	errs := validator.Struct(r)
	if !r.Target.Valid() {
		errs.Add("target", "target must be an employee, a role or broadcast")
	}
	return errs.Err()
}

func (r *CreateNotificationRequest) applyDefaults() {
	if r.Type == "" {
		r.Type = TypeInfo
	}
	if r.Category == "" {
		r.Category = CategoryGeneral
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
}

// Build turns a validated request into a notification.
func (r CreateNotificationRequest) Build() Notification {
	r.applyDefaults()
	return Notification{
		Target:    r.Target,
		Audience:  r.Target.Audience(),
		Type:      r.Type,
		Category:  r.Category,
		Priority:  r.Priority,
		Title:     r.Title,
		Message:   r.Message,
		ActionURL: r.ActionURL,
		Data:      r.Data,
	}
}

// SendNotificationRequest is the HTTP form of CreateNotificationRequest.
type SendNotificationRequest struct {
	TargetKind  string `json:"target_kind" validate:"required,oneof=employee role broadcast"`
	TargetValue string `json:"target_value"`
	CreateNotificationRequest
}

// ToCreate resolves the target fields.
func (r SendNotificationRequest) ToCreate() CreateNotificationRequest {
	req := r.CreateNotificationRequest
	req.Target = Target{Kind: TargetKind(r.TargetKind), Value: r.TargetValue}
	return req
}
