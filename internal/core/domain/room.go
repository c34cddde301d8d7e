package domain

type Room struct {
	ID int `json:"id"`
}

func (r *Room) Identifier() *int {
	return &r.ID
}
