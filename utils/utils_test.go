package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"freelancehub/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFlexFloat(t *testing.T) {
	var in struct {
		A FlexFloat `json:"a"`
		B FlexFloat `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
		E FlexFloat `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 40, "b": "12.5", "c": null, "d": ""}`), &in)
	require.NoError(t, err)
	assert.Equal(t, 40.0, *in.A.Value)
	assert.Equal(t, 12.5, *in.B.Value)
	assert.True(t, in.C.Set)
	assert.Nil(t, in.C.Value)
	assert.Nil(t, in.D.Value)
	assert.False(t, in.E.Set)

	require.Error(t, json.Unmarshal([]byte(`{"a": "lots"}`), &in))
}

func TestParseID(t *testing.T) {
	_, err := ParseID("nope", "Invalid job id")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Equal(t, "Invalid job id", err.Error())

	id, err := ParseID(" 64b7f0c2a1b2c3d4e5f60718 ", "x")
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id.Hex())
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Bearer abc.def")
	tok, ok := BearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct{ Name string }
	w := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"x"}`))
	require.NoError(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.NoError(t, DecodeJSON(w, r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(w, r, &dst)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestRespondWithErr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/jobs/x", nil)

	w := httptest.NewRecorder()
	RespondWithErr(w, r, zap.NewNop(), apperr.NotFound("Job not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Job not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	RespondWithErr(w, r, zap.NewNop(), errors.New("socket closed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "if a<b and c>d then", CleanText("  if a<b and c>d then \n"))
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", CleanText("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "<b>", CleanText("<b>"))
	assert.Equal(t, "I'm fine & you?", CleanText("I'm fine & you?"))
	assert.Equal(t, "line one\n\tline two", CleanText("line one\r\n\tline two\x00\x1b"))
}

func TestRespondWithJSONEscapesMarkup(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusOK, M{"bio": CleanText("<script>alert(1)</script>")})
	assert.NotContains(t, w.Body.String(), "<script>")
	assert.Contains(t, w.Body.String(), `\u003cscript\u003e`)

	var got M
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "<script>alert(1)</script>", got["bio"])
}

func TestTrimStrings(t *testing.T) {
	assert.Equal(t, []string{"go", "react"}, TrimStrings([]string{" go ", "", "  ", "react"}))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(r))
}
