package tracing

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingIngress opens a server span per request, joined to the
// caller's trace when the request carries trace headers.
func TracingIngress() gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()
		carrier := opentracing.HTTPHeadersCarrier(c.Request.Header)
		parent, _ := tracer.Extract(opentracing.HTTPHeaders, carrier)

		span := tracer.StartSpan(c.Request.Method+" "+c.Request.RequestURI, ext.RPCServerOption(parent))
		defer span.Finish()
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.RequestURI)

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}
