package model

// ConvertedImage описывает одно изображение, перекодированное в WebP.
// URL указывает на дескриптор, по которому можно скачать результат,
// пока изображение не удалено из галереи.
type ConvertedImage struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	OriginalSize int64  `json:"original_size"`
	EncodedSize  int64  `json:"encoded_size"`
	Quality      int    `json:"quality"`
	URL          string `json:"url"`
}

// FileFailure описывает файл пакета, который не удалось сконвертировать.
type FileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResponse ответ на загрузку пакета изображений.
type BatchResponse struct {
	State    string           `json:"state"`
	Added    []ConvertedImage `json:"added"`
	Failures []FileFailure    `json:"failures,omitempty"`
	Skipped  []string         `json:"skipped,omitempty"`
}

// GalleryResponse содержимое галереи клиента.
type GalleryResponse struct {
	Images []ConvertedImage `json:"images"`
}
