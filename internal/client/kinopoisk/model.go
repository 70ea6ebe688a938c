package kinopoisk

// Film contains the subset of film metadata the trailer pipeline needs.
type Film struct {
	// ID is the Kinopoisk film identifier.
	ID string
	// NameRu is the Russian film title.
	NameRu string
	// NameOriginal is the original (usually English) film title.
	NameOriginal string
	// Year is the premiere year, 0 when unknown.
	Year int
}

// Trailer is one trailer reference attached to a film.
type Trailer struct {
	// FilmName is the name of the film this trailer belongs to.
	FilmName string
	// Name is the trailer's own display name.
	Name string
	// URL is the canonical playback URL on the hosting site.
	URL string
	// Site is the hosting site label reported by the API.
	Site string
	// Year is the film's premiere year, 0 when unknown.
	Year int
}

// unofficialFilmResponse mirrors the kinopoiskapiunofficial.tech film endpoint.
type unofficialFilmResponse struct {
	KinopoiskID  int64  `json:"kinopoiskId"`
	NameRu       string `json:"nameRu"`
	NameOriginal string `json:"nameOriginal"`
	Year         int    `json:"year"`
}

// unofficialVideosResponse mirrors the kinopoiskapiunofficial.tech videos endpoint.
type unofficialVideosResponse struct {
	Total int `json:"total"`
	Items []struct {
		URL  string `json:"url"`
		Name string `json:"name"`
		Site string `json:"site"`
	} `json:"items"`
}

// devMovieResponse mirrors the api.kinopoisk.dev movie endpoint.
// Trailers are embedded in the movie document instead of a separate endpoint.
type devMovieResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`

	AlternativeName string `json:"alternativeName"`

	Videos struct {
		Trailers []struct {
			URL  string `json:"url"`
			Name string `json:"name"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"trailers"`
	} `json:"videos"`
}
