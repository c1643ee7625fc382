package domain

// Event names of the signaling protocol.
const (
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventRoomParticipants = "room-participants"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventSignal           = "signal"

	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"

	EventToggleAudio     = "toggle-audio"
	EventUserToggleAudio = "user-toggle-audio"
	EventToggleVideo     = "toggle-video"
	EventUserToggleVideo = "user-toggle-video"

	EventStartSharing       = "start-sharing"
	EventUserStartedSharing = "user-started-sharing"
	EventStopSharing        = "stop-sharing"
	EventUserStoppedSharing = "user-stopped-sharing"

	EventPing  = "ping"
	EventPong  = "pong"
	EventLeft  = "left"
	EventError = "error"
)
