package handler

import (
	"encoding/json"

	"github.com/cmsdash/internal/service"
)

// postRequest is the body of POST /api/posts and PUT /api/posts/:id.
type postRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Author  string `json:"author" binding:"required"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{Title: r.Title, Content: r.Content, Author: r.Author}
}

// pageCreateRequest is the JSON body of POST /api/pages.
type pageCreateRequest struct {
	Title   string `json:"title" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Content string `json:"content" binding:"required"`
	Photo   string `json:"photo"`
}

func (r pageCreateRequest) input() service.PageInput {
	return service.PageInput{Title: r.Title, Slug: r.Slug, Content: r.Content, Photo: r.Photo}
}

// pageUpdateRequest is the body of PUT /api/pages/:slug. Without a "photo" key
// the current photo is kept; "photo": null or "" clears it.
type pageUpdateRequest struct {
	Title   string     `json:"title" binding:"required"`
	Content string     `json:"content" binding:"required"`
	Photo   photoField `json:"photo"`
}

func (r pageUpdateRequest) input() service.PageUpdateInput {
	input := service.PageUpdateInput{Title: r.Title, Content: r.Content}
	if r.Photo.present {
		photo := r.Photo.value
		input.Photo = &photo
	}
	return input
}

// photoField 区分缺省的 photo 与显式的 null。
type photoField struct {
	present bool
	value   string
}

func (f *photoField) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.value = ""
		return nil
	}
	return json.Unmarshal(data, &f.value)
}
