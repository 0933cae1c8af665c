package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentConns 全服并发连接上限
const maxConcurrentConns = 10000

// connSem 并发连接信号量：超限的握手直接拒绝，保护 Tick 循环
var connSem = semaphore.NewWeighted(maxConcurrentConns)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞 Tick）
	}
}

// Close 关闭底层连接与发送队列
func (c *ClientConn) Close() {
	if c.send != nil {
		// 关闭发送通道以结束写协程
		close(c.send)
		c.send = nil
	}
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 读取客户端输入帧，转换为 inputEvent 注入房间
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()
	defer connSem.Release(1)
	// 读泵退出时，通知房间在 Tick 协程中移除该玩家；带上本连接，
	// 这样重连后旧读泵的收尾不会误伤新会话
	defer room.RequestLeave(playerID, c)
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		if strings.ToLower(im.Type) != "input" {
			continue
		}
		in := im.Input
		in.Sequence = im.Seq
		room.OnInput(inputEvent{
			PlayerID:  playerID,
			Input:     in,
			Rotation:  im.Rotation,
			Animation: im.Animation,
		})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&player=alice
// 未带 player 参数时分配随机访客 ID
func HandleWS(w http.ResponseWriter, r *http.Request) {
	if !connSem.TryAcquire(1) {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = "guest-" + uuid.NewString()
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		connSem.Release(1)
		Log.Warnf("upgrade error: %v", err)
		return
	}

	rm := GetRoomManager()
	room := rm.GetOrCreateRoom(roomID)

	client := NewClientConn(ws)
	room.JoinPlayer(PlayerID(playerID), client)

	go client.writePump()
	go client.readPump(room, PlayerID(playerID))
}
