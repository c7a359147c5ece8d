package book

// Book represents a catalogue record. ID is the wire form of the
// storage-native identifier and is always set on records read back from
// a Repository.
type Book struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Stock       *int    `json:"stock,omitempty"`
}

// CreatedID is the body returned by create and update.
type CreatedID struct {
	ID string `json:"id"`
}
