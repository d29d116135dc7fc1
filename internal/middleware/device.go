package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Device id header and gin context key. The device id ties a magic-link request
// to its completion.
const (
	HeaderDeviceID  = "X-Device-ID"
	ContextDeviceID = "deviceID"
)

// DeviceID stores the request's device id in the context. With generate set, a
// missing id is replaced by a new one and echoed in the response header.
func DeviceID(generate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderDeviceID)
		if id == "" && generate {
			id = uuid.NewString()
			c.Header(HeaderDeviceID, id)
		}
		c.Set(ContextDeviceID, id)
		c.Next()
	}
}
