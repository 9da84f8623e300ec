package a

import "net/http"

func fetch(url string) (*http.Response, error) {
	return http.Get(url) // want "использование http.Get запрещено"
}

func client() *http.Client {
	return http.DefaultClient // want "использование http.DefaultClient запрещено"
}

func allowed(c *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
