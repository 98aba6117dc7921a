package teams

type createTeamRequest struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type joinRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,max=32"`
}

type reviewRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

type inviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}
