// file: controllers/live_controller.go
package controllers

import (
	"fmt"
	"log"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/services"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// 空闲连接的保活间隔，避免中间代理掐断长连接
const keepAliveInterval = 30 * time.Second

// StreamEvents —— SSE 长连接，把变更通知转发给在线客户端。
// 事件只携带"哪类数据变了"的标记，客户端收到后自行回源拉取
func StreamEvents(c *gin.Context) {
	subID := utils.GenerateSubscriberID()

	pubsub := database.RDB.Subscribe(database.Ctx, services.ChangeChannel)
	defer pubsub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // nginx

	// 初始注释行，确认连接建立
	fmt.Fprint(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	log.Printf("live: subscriber %s connected", subID)

	events := pubsub.Channel()
	keepalive := time.NewTicker(keepAliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				log.Printf("live: subscriber %s channel closed", subID)
				return
			}
			fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", msg.Payload)
			c.Writer.Flush()

		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			// 客户端断开
			log.Printf("live: subscriber %s disconnected", subID)
			return
		}
	}
}
