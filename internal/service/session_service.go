package service

import (
	"context"
	"encoding/json"
	"fmt"

	"converso-go/internal/model"
	"converso-go/internal/repository"
	"converso-go/pkg/errs"
	"converso-go/pkg/events"
	"converso-go/pkg/log"
)

// EventPublisher 将会话完成事件发布到消息队列。
// 发布失败只记录日志，不影响历史写入的结果。
type EventPublisher func(event events.SessionCompletedEvent) error

// TranscriptArchive 负责会话转录的归档与检索。
type TranscriptArchive interface {
	Put(ctx context.Context, sessionID uint, data []byte) error
	URL(sessionID uint) (string, error)
}

// SessionService 接口定义了会话历史相关的业务操作。
type SessionService interface {
	// Append 追加一条"用户完成了与伙伴 X 的会话"记录。
	// 无去重无幂等：每次调用代表一次完成的会话，调用两次就是两条记录。
	Append(companionID, userID string) (*model.SessionHistory, error)
	ListRecentGlobal(limit int) ([]model.Companion, error)
	ListByUser(userID string, limit int) ([]model.Companion, error)
	// ArchiveTranscript 将一次会话的最终转录归档到对象存储。
	ArchiveTranscript(ctx context.Context, sessionID uint, messages []model.TranscriptMessage) error
	// TranscriptURL 为会话拥有者生成转录的预签名下载地址。
	TranscriptURL(sessionID uint, userID string) (string, error)
}

// sessionService 是 SessionService 接口的实现。
type sessionService struct {
	historyRepo   repository.SessionHistoryRepository
	companionRepo repository.CompanionRepository
	publish       EventPublisher
	archive       TranscriptArchive
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(historyRepo repository.SessionHistoryRepository, companionRepo repository.CompanionRepository, publish EventPublisher, archive TranscriptArchive) SessionService {
	return &sessionService{
		historyRepo:   historyRepo,
		companionRepo: companionRepo,
		publish:       publish,
		archive:       archive,
	}
}

// Append 处理会话历史追加的业务逻辑。
func (s *sessionService) Append(companionID, userID string) (*model.SessionHistory, error) {
	if userID == "" {
		return nil, errs.ErrUnauthorized
	}

	// 被引用的伙伴必须存在
	companion, err := s.companionRepo.FindByID(companionID)
	if err != nil {
		return nil, err
	}

	entry := &model.SessionHistory{
		CompanionID: companion.ID,
		UserID:      userID,
	}
	if err := s.historyRepo.Create(entry); err != nil {
		return nil, err
	}

	// 历史已落库，事件发布失败不回滚
	if s.publish != nil {
		event := events.SessionCompletedEvent{
			CompanionID: entry.CompanionID,
			UserID:      entry.UserID,
			CompletedAt: entry.CreatedAt,
		}
		if err := s.publish(event); err != nil {
			log.Warnf("发布会话完成事件失败: companion=%s, err=%v", entry.CompanionID, err)
		}
	}

	return entry, nil
}

// ListRecentGlobal 返回全局最近会话对应的伙伴列表，最新会话排最前。
func (s *sessionService) ListRecentGlobal(limit int) ([]model.Companion, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.historyRepo.FindRecentCompanions(limit)
}

// ListByUser 返回某个用户最近会话对应的伙伴列表。
func (s *sessionService) ListByUser(userID string, limit int) ([]model.Companion, error) {
	if userID == "" {
		return nil, errs.ErrUnauthorized
	}
	if limit <= 0 {
		limit = 10
	}
	return s.historyRepo.FindCompanionsByUser(userID, limit)
}

// ArchiveTranscript 将转录序列化为 JSON 并写入对象存储。
func (s *sessionService) ArchiveTranscript(ctx context.Context, sessionID uint, messages []model.TranscriptMessage) error {
	if s.archive == nil {
		return nil
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("序列化会话转录失败: %w", err)
	}
	return s.archive.Put(ctx, sessionID, data)
}

// TranscriptURL 校验归属后生成预签名地址，只有会话拥有者可以读取。
func (s *sessionService) TranscriptURL(sessionID uint, userID string) (string, error) {
	if userID == "" {
		return "", errs.ErrUnauthorized
	}
	entry, err := s.historyRepo.FindByID(sessionID)
	if err != nil {
		return "", err
	}
	if entry.UserID != userID {
		return "", errs.ErrNotFound
	}
	if s.archive == nil {
		return "", errs.ErrNotFound
	}
	return s.archive.URL(sessionID)
}
