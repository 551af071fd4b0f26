package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"PartnerWebserver/internal/domain"
)

type PostsStore interface {
	CreatePost(ctx context.Context, username, image, caption string) (domain.Post, error)
	GetPost(ctx context.Context, viewer, id string) (domain.Post, error)
	ListFeed(ctx context.Context, viewer string) ([]domain.Post, error)
	ListPostsByUser(ctx context.Context, viewer, username string) ([]domain.Post, error)
	ListExplore(ctx context.Context, viewer string, limit int) ([]domain.Post, error)
	ListByHashtag(ctx context.Context, viewer, tag string) ([]domain.Post, error)
	UpdateCaption(ctx context.Context, id, caption string) error
	DeletePost(ctx context.Context, id string) error
	InsertLike(ctx context.Context, postID, username string) (bool, error)
	DeleteLike(ctx context.Context, postID, username string) error
	AddComment(ctx context.Context, postID, username, body string) (domain.Comment, error)
}

const exploreLimit = 30

type FeedService struct {
	Posts    PostsStore
	Notifier Notifier
	Logger   *slog.Logger
}

func (s *FeedService) CreatePost(ctx context.Context, username, image, caption string) (domain.Post, error) {
	caption = strings.TrimSpace(caption)
	if strings.TrimSpace(image) == "" {
		return domain.Post{}, domain.NewValidationError(map[string]string{"image": "required"})
	}
	if len(caption) > 1000 {
		return domain.Post{}, domain.NewValidationError(map[string]string{"caption": "must be 1000 characters or less"})
	}
	return s.Posts.CreatePost(ctx, username, image, caption)
}

// UpdateCaption edits the caption on the actor's own post.
func (s *FeedService) UpdateCaption(ctx context.Context, actor, postID, caption string) (domain.Post, error) {
	caption = strings.TrimSpace(caption)
	if len(caption) > 1000 {
		return domain.Post{}, domain.NewValidationError(map[string]string{"caption": "must be 1000 characters or less"})
	}

	post, err := s.Posts.GetPost(ctx, actor, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if post.Username != actor {
		return domain.Post{}, domain.ErrForbidden
	}

	if err := s.Posts.UpdateCaption(ctx, postID, caption); err != nil {
		return domain.Post{}, err
	}
	post.Caption = caption
	return post, nil
}

// DeletePost removes the actor's own post along with its likes and
// comments.
func (s *FeedService) DeletePost(ctx context.Context, actor, postID string) error {
	post, err := s.Posts.GetPost(ctx, actor, postID)
	if err != nil {
		return err
	}
	if post.Username != actor {
		return domain.ErrForbidden
	}
	return s.Posts.DeletePost(ctx, postID)
}

func (s *FeedService) Feed(ctx context.Context, viewer string) ([]domain.Post, error) {
	return s.Posts.ListFeed(ctx, viewer)
}

func (s *FeedService) UserPosts(ctx context.Context, viewer, username string) ([]domain.Post, error) {
	return s.Posts.ListPostsByUser(ctx, viewer, username)
}

// Explore shows the latest posts site-wide regardless of follow graph.
func (s *FeedService) Explore(ctx context.Context, viewer string) ([]domain.Post, error) {
	return s.Posts.ListExplore(ctx, viewer, exploreLimit)
}

func (s *FeedService) Hashtag(ctx context.Context, viewer, tag string) ([]domain.Post, error) {
	tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
	if tag == "" {
		return nil, domain.NewValidationError(map[string]string{"tag": "required"})
	}
	return s.Posts.ListByHashtag(ctx, viewer, tag)
}

// ToggleLike likes the post, or removes the like when it already exists.
// Returns the liked state after the call. The owner hears about new
// likes, never about un-likes.
func (s *FeedService) ToggleLike(ctx context.Context, actor, postID string) (bool, error) {
	post, err := s.Posts.GetPost(ctx, actor, postID)
	if err != nil {
		return false, err
	}

	inserted, err := s.Posts.InsertLike(ctx, postID, actor)
	if err != nil {
		return false, err
	}
	if !inserted {
		if err := s.Posts.DeleteLike(ctx, postID, actor); err != nil {
			return false, err
		}
		return false, nil
	}

	if s.Notifier != nil {
		msg := fmt.Sprintf("%s liked your post.", actor)
		if err := s.Notifier.Notify(ctx, post.Username, actor, domain.NotificationLike, msg, domain.LikePayload{
			PostID: postID,
			Liker:  actor,
		}); err != nil {
			s.logger().Error("like notification failed", "err", err, "post_id", postID)
		}
	}
	return true, nil
}

func (s *FeedService) Comment(ctx context.Context, actor, postID, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Comment{}, domain.NewValidationError(map[string]string{"body": "required"})
	}
	if len(body) > 1000 {
		return domain.Comment{}, domain.NewValidationError(map[string]string{"body": "must be 1000 characters or less"})
	}

	post, err := s.Posts.GetPost(ctx, actor, postID)
	if err != nil {
		return domain.Comment{}, err
	}

	c, err := s.Posts.AddComment(ctx, postID, actor, body)
	if err != nil {
		return domain.Comment{}, err
	}

	if s.Notifier != nil {
		msg := fmt.Sprintf("%s commented on your post.", actor)
		if err := s.Notifier.Notify(ctx, post.Username, actor, domain.NotificationComment, msg, domain.CommentPayload{
			PostID:    postID,
			Commenter: actor,
		}); err != nil {
			s.logger().Error("comment notification failed", "err", err, "post_id", postID)
		}
	}
	return c, nil
}

func (s *FeedService) GetPost(ctx context.Context, viewer, postID string) (domain.Post, error) {
	return s.Posts.GetPost(ctx, viewer, postID)
}

func (s *FeedService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
