package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/mms-documents/internal/model"
)

func (s *DocumentService) ExportExcel(ctx context.Context, kind model.DocumentKind, filter Filter) (*FileResult, error) {
	docs, err := s.List(ctx, kind, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	content, err := s.excel.Export(kind, docs, now)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: fmt.Sprintf("%s-%s.xlsx", kind.Slug(), now.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *DocumentService) RenderPDF(ctx context.Context, kind model.DocumentKind, number string) (*FileResult, error) {
	doc, err := s.Get(ctx, kind, number)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Render(*doc)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: sanitizeFileName(doc.Header.DocumentNumber) + ".pdf",
		Content:  content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
