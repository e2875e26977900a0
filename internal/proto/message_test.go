package proto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    any
		wantErr error
	}{
		{
			name:  "create room without name",
			frame: `{"type":"create_room"}`,
			want:  &CreateRoomData{},
		},
		{
			name:  "join room with extra fields",
			frame: `{"type":"join_room","roomId":"ab12cd34","senderName":"bob","color":"red"}`,
			want:  &JoinRoomData{RoomID: "ab12cd34", SenderName: "bob"},
		},
		{
			name:  "leave room",
			frame: `{"type":"leave_room"}`,
			want:  &LeaveRoomData{},
		},
		{
			name:  "chat message",
			frame: `{"type":"chat_message","roomId":"r","message":"hi"}`,
			want:  &ChatMessageData{RoomID: "r", Message: "hi"},
		},
		{
			name:  "long chat message",
			frame: `{"type":"chat_message","roomId":"r","message":"` + strings.Repeat("x", 10000) + `"}`,
			want:  &ChatMessageData{RoomID: "r", Message: strings.Repeat("x", 10000)},
		},
		{
			name:  "long sender name",
			frame: `{"type":"create_room","senderName":"` + strings.Repeat("n", 200) + `"}`,
			want:  &CreateRoomData{SenderName: strings.Repeat("n", 200)},
		},
		{
			name:  "set name empty reaches core",
			frame: `{"type":"set_name","senderName":""}`,
			want:  &SetNameData{},
		},
		{
			name:  "set name missing reaches core",
			frame: `{"type":"set_name"}`,
			want:  &SetNameData{},
		},
		{
			name:  "set name",
			frame: `{"type":"set_name","senderName":"alice"}`,
			want:  &SetNameData{SenderName: "alice"},
		},
		{name: "not json", frame: `hello`, wantErr: ErrMalformed},
		{name: "json string", frame: `"create_room"`, wantErr: ErrMalformed},
		{name: "missing type", frame: `{"roomId":"r"}`, wantErr: ErrMalformed},
		{name: "join without room", frame: `{"type":"join_room"}`, wantErr: ErrMalformed},
		{name: "chat without message", frame: `{"type":"chat_message","roomId":"r"}`, wantErr: ErrMalformed},
		{name: "wrong field type", frame: `{"type":"join_room","roomId":42}`, wantErr: ErrMalformed},
		{name: "unknown type", frame: `{"type":"dance"}`, wantErr: ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.frame))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
