package model

type TitleID int64

const EmptyTitle string = ""

type MovieMeta struct {
	ID         TitleID
	PosterLink string
	Title      string
	Genres     []string
	Year       int
	Rating     float64
	Runtime    int

	Overview string
}

// IDs keeps order of mm.
func IDs(mm []MovieMeta) []TitleID {
	ids := make([]TitleID, 0, len(mm))
	for _, m := range mm {
		ids = append(ids, m.ID)
	}
	return ids
}
