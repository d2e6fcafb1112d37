package game

import "context"

// Service defines the interface for session lifecycle operations
type Service interface {
	// CreateSession opens a new lobby in a Discord channel
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSession seats a player in a waiting lobby
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// LeaveSession removes a player from a session
	LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error)

	// StartGame moves a waiting lobby into play
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)

	// EndSession concludes a session and archives it
	EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error)

	// MarkPayoutDone flags reward settlement for a session, at most once
	MarkPayoutDone(ctx context.Context, input *MarkPayoutDoneInput) (*MarkPayoutDoneOutput, error)

	// AttachMessage records the rendered message backing a session's controls
	AttachMessage(ctx context.Context, input *AttachMessageInput) (*AttachMessageOutput, error)

	// GetSession retrieves a live session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// GetSessionByChannel retrieves the live session owned by a channel
	GetSessionByChannel(ctx context.Context, input *GetSessionByChannelInput) (*GetSessionByChannelOutput, error)
}
