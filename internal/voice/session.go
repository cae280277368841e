// Package voice 实现语音会话的状态机。
// 状态沿 INACTIVE → CONNECTING → ACTIVE → FINISHED 单向推进
// （启动失败时 CONNECTING → INACTIVE），从不回退。
// 事件通过通道投递给单一消费协程，不依赖回调注册。
package voice

import (
	"sync"
	"time"

	"converso-go/internal/model"
	"converso-go/pkg/log"
)

// CallStatus 是语音会话的四态枚举。
type CallStatus int

const (
	StatusInactive CallStatus = iota
	StatusConnecting
	StatusActive
	StatusFinished
)

// String 返回状态的线格式表示。
func (s CallStatus) String() string {
	switch s {
	case StatusInactive:
		return "INACTIVE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusActive:
		return "ACTIVE"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// EventType 是语音传输层投递的事件类型。
type EventType string

const (
	EventStartRequested EventType = "start-requested"
	EventStarted        EventType = "call-start"
	EventStartFailed    EventType = "start-failed"
	EventSpeechStart    EventType = "speech-start"
	EventSpeechEnd      EventType = "speech-end"
	EventMessage        EventType = "message"
	EventEnded          EventType = "call-end"
	EventError          EventType = "error"
)

// Event 是投递给状态机的类型化输入。
// Message 事件额外携带转录字段；Error 事件携带错误描述。
type Event struct {
	Type           EventType `json:"type"`
	Role           string    `json:"role,omitempty"`
	TranscriptType string    `json:"transcriptType,omitempty"`
	Transcript     string    `json:"transcript,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Session 是一次语音会话的状态机实例。
// 事件由 Deliver 写入通道，由内部协程顺序消费；
// 同类型事件保持 FIFO，跨类型不假设任何顺序。
type Session struct {
	mu         sync.Mutex
	status     CallStatus
	speaking   bool
	muted      bool
	transcript []model.TranscriptMessage // 最新的在最前

	events   chan Event
	done     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once

	// onFinish 在进入 FINISHED 时被调用一次，携带完整转录。
	onFinish func(transcript []model.TranscriptMessage)
	// onTransition 在每次状态或 speaking 变化后被调用，用于向客户端推送。
	onTransition func(status CallStatus, speaking bool)
}

// NewSession 创建一个语音会话状态机并启动其消费协程。
func NewSession(onFinish func([]model.TranscriptMessage), onTransition func(CallStatus, bool)) *Session {
	s := &Session{
		status:       StatusInactive,
		events:       make(chan Event, 16),
		done:         make(chan struct{}),
		quit:         make(chan struct{}),
		onFinish:     onFinish,
		onTransition: onTransition,
	}
	go s.run()
	return s
}

// Deliver 投递一个事件。会话结束或被放弃后投递被忽略并返回 false。
func (s *Session) Deliver(ev Event) bool {
	// 先做非阻塞检查，保证结束后的投递确定性地被拒绝
	select {
	case <-s.done:
		return false
	case <-s.quit:
		return false
	default:
	}
	select {
	case <-s.done:
		return false
	case <-s.quit:
		return false
	case s.events <- ev:
		return true
	}
}

// Close 结束会话。若会话仍在进行中，等价于投递 call-end。
func (s *Session) Close() {
	s.Deliver(Event{Type: EventEnded})
}

// Abort 放弃会话：终止消费协程但不触发 FINISHED 的副作用。
// 连接中断而客户端尚未发送 call-end 时走这条路径，不记录历史。
func (s *Session) Abort() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Status 返回当前状态。
func (s *Session) Status() CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsSpeaking 返回助手当前是否在说话。
func (s *Session) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// SetMuted 记录客户端的麦克风状态。
func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

// IsMuted 返回当前麦克风状态。
func (s *Session) IsMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Transcript 返回转录副本，最新的消息在最前。
func (s *Session) Transcript() []model.TranscriptMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TranscriptMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Done 返回一个在会话结束时关闭的通道。
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// run 是唯一的事件消费协程。
func (s *Session) run() {
	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.events:
			if s.apply(ev) {
				close(s.done)
				return
			}
		}
	}
}

// apply 执行一次状态转移，返回 true 表示会话已进入 FINISHED。
func (s *Session) apply(ev Event) bool {
	s.mu.Lock()

	finished := false
	notify := false

	switch ev.Type {
	case EventStartRequested:
		if s.status == StatusInactive {
			s.status = StatusConnecting
			notify = true
		}
	case EventStarted:
		if s.status == StatusConnecting {
			s.status = StatusActive
			notify = true
		}
	case EventStartFailed:
		if s.status == StatusConnecting {
			s.status = StatusInactive
			notify = true
		}
	case EventSpeechStart:
		if s.status == StatusActive && !s.speaking {
			s.speaking = true
			notify = true
		}
	case EventSpeechEnd:
		if s.status == StatusActive && s.speaking {
			s.speaking = false
			notify = true
		}
	case EventMessage:
		// 只保留最终转录，部分转录直接忽略
		if s.status == StatusActive && ev.TranscriptType == "final" {
			msg := model.TranscriptMessage{
				Role:      ev.Role,
				Content:   ev.Transcript,
				Timestamp: model.LocalTime(time.Now()),
			}
			// 新消息放最前，保持倒序时间线
			s.transcript = append([]model.TranscriptMessage{msg}, s.transcript...)
		}
	case EventEnded:
		if s.status == StatusConnecting || s.status == StatusActive {
			s.status = StatusFinished
			s.speaking = false
			finished = true
			notify = true
		}
	case EventError:
		log.Warnf("语音会话收到错误事件: %s", ev.Error)
	}

	status := s.status
	speaking := s.speaking
	var transcript []model.TranscriptMessage
	if finished {
		transcript = make([]model.TranscriptMessage, len(s.transcript))
		copy(transcript, s.transcript)
	}
	s.mu.Unlock()

	if notify && s.onTransition != nil {
		s.onTransition(status, speaking)
	}
	if finished && s.onFinish != nil {
		s.onFinish(transcript)
	}
	return finished
}
