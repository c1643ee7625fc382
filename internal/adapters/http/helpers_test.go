package http

import "github.com/dkeye/Meet/internal/domain"

func roomID(s string) domain.RoomID               { return domain.RoomID(s) }
func participantID(s string) domain.ParticipantID { return domain.ParticipantID(s) }
