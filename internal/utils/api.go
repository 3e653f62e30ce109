package utils

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ApiError is the body of every failed response.
type ApiError struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error,omitempty"`
}

func (o *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", o.StatusCode, o.Msg)
}

func newApiError(statusCode int, msg string) ApiError {
	return ApiError{StatusCode: statusCode, Msg: msg}
}

func NewInternalServerError(msg string) ApiError { return newApiError(http.StatusInternalServerError, msg) }
func NewBadRequest(msg string) ApiError          { return newApiError(http.StatusBadRequest, msg) }
func NewUnauthorized(msg string) ApiError        { return newApiError(http.StatusUnauthorized, msg) }
func NewForbidden(msg string) ApiError           { return newApiError(http.StatusForbidden, msg) }

// XMLResponse gives XML bodies a single root whatever the payload is.
type XMLResponse struct {
	XMLName xml.Name    `xml:"response"`
	Data    interface{} `xml:"data,omitempty"`
	Error   string      `xml:"error,omitempty"`
}

type mediaType string

const (
	mediaJSON mediaType = "application/json"
	mediaXML  mediaType = "application/xml"
)

var encoders = map[mediaType]func(interface{}) ([]byte, error){
	mediaJSON: json.Marshal,
	mediaXML:  encodeXML,
}

func encodeXML(res interface{}) ([]byte, error) {
	switch v := res.(type) {
	case ApiError:
		return xml.Marshal(XMLResponse{Error: v.Msg})
	case error:
		return xml.Marshal(XMLResponse{Error: v.Error()})
	}
	return xml.Marshal(XMLResponse{Data: res})
}

const maxBodyBytes = 1 << 20

// JsonDecodeBody decodes at most 1 MiB of request body into dst.
func JsonDecodeBody(r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}

// RenderResponse writes res in the first media type the client accepts,
// JSON when it names none we serve. A nil res writes only the status.
func RenderResponse(r *http.Request, w http.ResponseWriter, statusCode int, res interface{}) {
	mt := negotiate(r.Header.Get("Accept"))
	encode := encoders[mt]

	var body []byte
	if res != nil {
		var err error
		if body, err = encode(res); err != nil {
			statusCode = http.StatusInternalServerError
			if body, err = encode(NewInternalServerError(err.Error())); err != nil {
				body = nil
			}
		}
	}

	w.Header().Set("Content-Type", string(mt))
	w.WriteHeader(statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// AllowedContentTypes answers 415 unless the request body is one of
// mediaTypes. Parameters such as charset are ignored.
func AllowedContentTypes(next http.HandlerFunc, mediaTypes ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || !contains(mediaTypes, mt) {
			RenderResponse(r, w, http.StatusUnsupportedMediaType, nil)
			return
		}
		next(w, r)
	}
}

// negotiate walks the Accept list in order; quality values are not ranked.
func negotiate(accept string) mediaType {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if _, ok := encoders[mediaType(mt)]; ok {
			return mediaType(mt)
		}
	}
	return mediaJSON
}

func contains(list []string, needle string) bool {
	for _, s := range list {
		if s == needle {
			return true
		}
	}
	return false
}
