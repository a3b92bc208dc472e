package application

import "github.com/oksasatya/go-user-service/internal/domain/entity"

// ToEntity builds a new, unsaved user from a request. ID and CreatedAt are
// left zero; the caller validates first, so a nil age is never expected here.
func ToEntity(req UserRequest) *entity.User {
	u := &entity.User{Name: req.Name, Email: req.Email}
	if req.Age != nil {
		u.Age = *req.Age
	}
	return u
}

// ToResponse copies every persisted field into the wire shape.
func ToResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: Timestamp{Time: u.CreatedAt},
	}
}

// ToResponses maps a slice; the result is never nil.
func ToResponses(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToResponse(&users[i]))
	}
	return out
}

// applyRequest overwrites the mutable fields of an existing user in place.
func applyRequest(u *entity.User, req UserRequest) {
	u.Name = req.Name
	u.Email = req.Email
	if req.Age != nil {
		u.Age = *req.Age
	}
}
