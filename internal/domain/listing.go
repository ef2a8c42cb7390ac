package domain

// Collections seeded by a run, in clearing order.
const (
	CollectionAgents     = "agents"
	CollectionReviews    = "reviews"
	CollectionGalleries  = "galleries"
	CollectionProperties = "properties"
)

var PropertyTypes = []string{
	"House",
	"Townhouse",
	"Condo",
	"Duplex",
	"Studio",
	"Villa",
	"Apartment",
	"other",
}

var Facilities = []string{"Laundry", "Parking", "Gym", "Wifi", "Pet-friendly"}

type Agent struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

func (a Agent) Fields() map[string]any {
	return map[string]any{
		"name":   a.Name,
		"email":  a.Email,
		"avatar": a.Avatar,
	}
}

type GalleryImage struct {
	ID    string
	Image string
}

func (g GalleryImage) Fields() map[string]any {
	return map[string]any{"image": g.Image}
}

type Property struct {
	ID          string
	Name        string
	Type        string
	Description string
	Address     string
	Geolocation string // "192.168.1.i, 192.168.1.i"; not a real coordinate pair
	Price       int
	Area        int
	Bedrooms    int
	Bathrooms   int
	Rating      int
	Facilities  []string
	Image       string
	Agent       string   // agent document id
	Reviews     []string // review document ids
	Gallery     []string // gallery document ids
}

func (p Property) Fields() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"type":        p.Type,
		"description": p.Description,
		"address":     p.Address,
		"geolocation": p.Geolocation,
		"price":       p.Price,
		"area":        p.Area,
		"bedrooms":    p.Bedrooms,
		"bathrooms":   p.Bathrooms,
		"rating":      p.Rating,
		"facilities":  p.Facilities,
		"image":       p.Image,
		"agent":       p.Agent,
		"reviews":     p.Reviews,
		"gallery":     p.Gallery,
	}
}

// Collections maps each seeded kind to its remote collection id.
type Collections struct {
	Agents     string
	Reviews    string
	Galleries  string
	Properties string
}

// CollectionRef pairs a logical collection name with its remote id.
type CollectionRef struct {
	Name string
	ID   string
}

// All returns the collections in clearing order.
func (c Collections) All() []CollectionRef {
	return []CollectionRef{
		{Name: CollectionAgents, ID: c.Agents},
		{Name: CollectionReviews, ID: c.Reviews},
		{Name: CollectionGalleries, ID: c.Galleries},
		{Name: CollectionProperties, ID: c.Properties},
	}
}
