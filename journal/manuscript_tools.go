package journal

import (
	"context"
	"fmt"

	"github.com/jonwraymond/journalops/backend"
	"github.com/jonwraymond/journalops/guard"
	"github.com/jonwraymond/journalops/observe"
	"github.com/jonwraymond/journalops/tool"
	"github.com/jonwraymond/journalops/validate"
)

func (s *Service) submitManuscript(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)

	title, err := requiredInput(args, "title")
	if err != nil {
		return nil, err
	}
	abstract, err := requiredInput(args, "abstract")
	if err != nil {
		return nil, err
	}

	fileData := args.String("file_data")
	fileName := args.String("file_name")
	contentType := args.String("content_type")
	if fileData == "" || fileName == "" {
		return nil, fmt.Errorf("%w: file_data, file_name", ErrMissingArgument)
	}
	if err := validate.FileUpload(fileData, fileName, contentType,
		s.security.MaxFileSize, s.security.AllowedFileTypes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	result, err := s.backend.Call(ctx, backend.CallMutation, sess.Token, "manuscripts:submit", map[string]any{
		"title":       title,
		"abstract":    abstract,
		"fileData":    fileData,
		"fileName":    fileName,
		"contentType": contentType,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "manuscript submitted",
		observe.Field{Key: "email", Value: sess.Email},
		observe.Field{Key: "title", Value: title},
	)
	return map[string]any{
		"success":    true,
		"manuscript": result,
	}, nil
}

func (s *Service) getMyManuscripts(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	result, err := s.backend.Call(ctx, backend.CallQuery, sess.Token, "manuscripts:listMine", nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"manuscripts": result}, nil
}

func (s *Service) checkManuscriptStatus(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	id, err := requiredInput(args, "manuscript_id")
	if err != nil {
		return nil, err
	}
	result, err := s.backend.Call(ctx, backend.CallQuery, sess.Token, "manuscripts:status", map[string]any{
		"manuscriptId": id,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": result}, nil
}
