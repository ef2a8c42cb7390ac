package domain

type Review struct {
	ID     string
	Name   string
	Avatar string
	Text   string
	Rating int // 1..5
}

func (r Review) Fields() map[string]any {
	return map[string]any{
		"name":   r.Name,
		"avatar": r.Avatar,
		"review": r.Text,
		"rating": r.Rating,
	}
}
