package journal

import (
	"context"
	"fmt"

	"github.com/jonwraymond/journalops/backend"
	"github.com/jonwraymond/journalops/guard"
	"github.com/jonwraymond/journalops/observe"
	"github.com/jonwraymond/journalops/tool"
)

func (s *Service) getAssignedReviews(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	result, err := s.backend.Call(ctx, backend.CallQuery, sess.Token, "reviews:assigned", nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"reviews": result}, nil
}

func (s *Service) submitReview(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	id, err := requiredInput(args, "manuscript_id")
	if err != nil {
		return nil, err
	}
	recommendation, err := requiredInput(args, "recommendation")
	if err != nil {
		return nil, err
	}
	comments, err := requiredInput(args, "comments")
	if err != nil {
		return nil, err
	}

	result, err := s.backend.Call(ctx, backend.CallMutation, sess.Token, "reviews:submit", map[string]any{
		"manuscriptId":   id,
		"recommendation": recommendation,
		"comments":       comments,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "review submitted",
		observe.Field{Key: "email", Value: sess.Email},
		observe.Field{Key: "manuscript_id", Value: id},
	)
	return map[string]any{
		"success": true,
		"review":  result,
	}, nil
}

// reviewGuidelines is served locally; it is reference text, not data the
// backend owns.
var reviewGuidelines = []string{
	"Evaluate the manuscript for originality, rigor, and clarity.",
	"Declare any conflict of interest before accepting an assignment.",
	"Keep all manuscript contents confidential during and after review.",
	"Recommend one of: accept, minor revision, major revision, reject.",
	"Substantiate every recommendation with specific comments to the authors.",
}

func (s *Service) getReviewGuidelines(ctx context.Context, args tool.Args) (any, error) {
	return map[string]any{"guidelines": reviewGuidelines}, nil
}

func (s *Service) assignReviewer(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	id, err := requiredInput(args, "manuscript_id")
	if err != nil {
		return nil, err
	}
	reviewerEmail, err := requiredInput(args, "reviewer_email")
	if err != nil {
		return nil, err
	}

	result, err := s.backend.Call(ctx, backend.CallMutation, sess.Token, "reviews:assign", map[string]any{
		"manuscriptId":  id,
		"reviewerEmail": reviewerEmail,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"success":    true,
		"assignment": result,
	}, nil
}

// editorialDecisions are the decisions the backend accepts.
var editorialDecisions = map[string]bool{
	"accept": true,
	"reject": true,
	"revise": true,
}

func (s *Service) makeEditorialDecision(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	id, err := requiredInput(args, "manuscript_id")
	if err != nil {
		return nil, err
	}
	decision, err := requiredInput(args, "decision")
	if err != nil {
		return nil, err
	}
	if !editorialDecisions[decision] {
		return nil, fmt.Errorf("%w: decision must be accept, reject, or revise", ErrInvalidArgument)
	}
	comments := args.String("comments")

	result, err := s.backend.Call(ctx, backend.CallMutation, sess.Token, "editorial:decide", map[string]any{
		"manuscriptId": id,
		"decision":     decision,
		"comments":     comments,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "editorial decision recorded",
		observe.Field{Key: "email", Value: sess.Email},
		observe.Field{Key: "manuscript_id", Value: id},
		observe.Field{Key: "decision", Value: decision},
	)
	return map[string]any{
		"success":  true,
		"decision": result,
	}, nil
}

func (s *Service) getSystemStatistics(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	result, err := s.backend.Call(ctx, backend.CallQuery, sess.Token, "admin:statistics", nil)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"backend":         result,
		"active_sessions": s.sessions.CountLiveSessions(ctx),
	}
	if s.limiter != nil {
		out["rate_limited_clients"] = s.limiter.Clients()
	}
	return out, nil
}
