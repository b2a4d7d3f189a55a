package dto

type SendInviteEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type SendInviteEmailResponse struct {
	Email      string `json:"email"`
	InviteCode string `json:"invite_code"`
}
