package httpdto

import "chat-service/internal/domain/user"

// ProfileDTO is the minimal user view joined onto participants and messages.
type ProfileDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

func FromProfile(p user.Profile) ProfileDTO {
	dto := ProfileDTO{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
	}
	if p.AvatarURL.Valid {
		avatar := p.AvatarURL.String
		dto.AvatarURL = &avatar
	}
	return dto
}
