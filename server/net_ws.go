package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snakearena/game"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 16
	sendQueue      = 64
)

// ClientConn 一个 WebSocket 观察者：房间 goroutine 编码后入队，writePump 负责写出
type ClientConn struct {
	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{ws: ws, send: make(chan []byte, sendQueue)}
}

// frameMessage 下发给客户端的一帧
type frameMessage struct {
	Type string `json:"type"`
	game.Snapshot
	IntervalMs     int64      `json:"intervalMs"`
	BaseIntervalMs int64      `json:"baseIntervalMs"`
	Factor         float64    `json:"factor"`
	Segments       []game.Vec `json:"segments"`
	Rainbow        bool       `json:"rainbow"`
	Glow           bool       `json:"glow"`
	Thickness      float64    `json:"thickness"`
	Wobble         game.Vec   `json:"wobble"`
}

type eventMessage struct {
	Type string `json:"type"`
	Event
}

// Frame 编码一帧并入队
func (c *ClientConn) Frame(f game.Frame) {
	b, err := json.Marshal(frameMessage{
		Type:           "frame",
		Snapshot:       f.Snapshot,
		IntervalMs:     f.Snapshot.Interval.Milliseconds(),
		BaseIntervalMs: f.Snapshot.BaseInterval.Milliseconds(),
		Factor:         f.Factor,
		Segments:       f.Segments,
		Rainbow:        f.Rainbow(),
		Glow:           f.Glow(),
		Thickness:      f.Thickness(),
		Wobble:         f.Wobble(),
	})
	if err != nil {
		Log.Errorw("encode frame", "err", err)
		return
	}
	c.Enqueue(b)
}

// Event 编码事件并入队
func (c *ClientConn) Event(e Event) {
	b, err := json.Marshal(eventMessage{Type: "event", Event: e})
	if err != nil {
		Log.Errorw("encode event", "err", err)
		return
	}
	c.Enqueue(b)
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃新消息（防止阻塞 Tick）
	}
}

// Close 关闭发送队列，写协程随之退出并关闭连接；只在房间 goroutine 中调用
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump 独立协程：send 关闭时发送 close 帧后退出
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *ClientConn) write(kind int, msg []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(kind, msg)
}

// readPump 读取客户端输入，转换为 Input 注入房间
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在房间 goroutine 中移除该玩家
	defer room.RequestLeave(playerID, c)
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				room.log.Warnw("ws read", "player", playerID, "err", err)
			}
			return
		}
		in, err := ParseInput(playerID, payload)
		if err != nil {
			room.log.Debugw("ignored input", "player", playerID, "err", err)
			continue
		}
		room.OnInput(in)
	}
}

// 帧消息较大，写缓冲比读缓冲大。允许任意来源，部署时由反向代理限制
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// HandleWS WebSocket 接入：?room=room-1&player=alice
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	room, err := m.GetOrCreateRoom(roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "err", err)
		return
	}

	pid := PlayerID(playerID)
	client := NewClientConn(ws)
	go client.writePump()
	if err := room.JoinPlayer(pid, client); err != nil {
		client.Close()
		return
	}
	go client.readPump(room, pid)
}
