package application

import (
	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/entity"
)

// Default values applied to optional fields when a user is created.
const (
	DefaultAddress     = "anywhere"
	DefaultPhoneNumber = "000-000-0000"
)

// UserDTO is the external representation of a user record.
type UserDTO struct {
	ID          int64  `json:"id,omitempty"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	BirthDate   Date   `json:"birthDate" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// PartialUserDTO is the same shape with every field optional; nil means
// "leave the stored value unchanged".
type PartialUserDTO struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	BirthDate   *Date   `json:"birthDate"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

// dtoToEntity maps an inbound DTO to a new entity, filling the optional
// fields with their creation defaults. Used only at the creation boundary;
// updates copy fields as-is.
func dtoToEntity(dto UserDTO) *entity.User {
	u := &entity.User{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		BirthDate:   dto.BirthDate.Time,
		Email:       dto.Email,
		Address:     dto.Address,
		PhoneNumber: dto.PhoneNumber,
	}
	if u.Address == "" {
		u.Address = DefaultAddress
	}
	if u.PhoneNumber == "" {
		u.PhoneNumber = DefaultPhoneNumber
	}
	return u
}

// entityToDTO maps a stored entity to its external representation. No
// defaulting happens here.
func entityToDTO(u *entity.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   Date{u.BirthDate},
		Email:       u.Email,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
	}
}
