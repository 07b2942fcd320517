package observability

const (
	MDispatchTotal       MetricKey = "payment_dispatch_total"
	MDispatchDuration    MetricKey = "payment_dispatch_duration_seconds"
	MResultTotal         MetricKey = "payment_result_total"
	MEventPublishFailed  MetricKey = "payment_event_publish_failed_total"
	MGatewayInitFailures MetricKey = "gateway_init_failed_total"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
)
