package dto

import (
	"strconv"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/convert"
)

// NewNoteDTO 领域笔记转 DTO
func NewNoteDTO(n *domain.Note) (*NoteDTO, error) {
	out := &NoteDTO{}
	if err := convert.StructAssign(n, out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewNoteDTOs 批量转换，保持顺序
func NewNoteDTOs(notes []*domain.Note) ([]*NoteDTO, error) {
	out := make([]*NoteDTO, 0, len(notes))
	for _, n := range notes {
		d, err := NewNoteDTO(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// NewListDTO 领域列表转 DTO
func NewListDTO(l *domain.List) (*ListDTO, error) {
	out := &ListDTO{}
	if err := convert.StructAssign(l, out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewListDTOs 批量转换，保持顺序
func NewListDTOs(lists []*domain.List) ([]*ListDTO, error) {
	out := make([]*ListDTO, 0, len(lists))
	for _, l := range lists {
		d, err := NewListDTO(l)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatIDs 将标识转为字符串
func FormatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
