package domain

// Item — сырая запись фида скрейпера (одна строка JSONL).
type Item struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Price    string   `json:"price"`
	Shop     string   `json:"shop"`
	Category string   `json:"category"`
	Images   []string `json:"images"`
	Avatars  []string `json:"avatars"`
	Colors   []string `json:"colors"`
}

// Indexable сообщает, можно ли вообще обрабатывать запись:
// без url или изображений товар пропускается целиком.
func (i *Item) Indexable() bool {
	return i.URL != "" && len(i.Images) > 0
}
