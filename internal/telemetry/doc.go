// Package telemetry provides OpenTelemetry instrumentation for upiexplain.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	engine, err := resolver.NewEngine(store, logger,
//	    resolver.WithTracer(tel.Tracer("upiexplain.resolver")),
//	    resolver.WithMeter(tel.Meter("upiexplain.resolver")))
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  service_name: "upiexplain"
//	  sample_rate: 1.0
//	  metrics_enabled: true
//	  export_interval: "15s"
//
// # Error Handling
//
// If an exporter cannot be created, the instance reports Degraded in Health
// and Tracer/Meter fall back to the global no-op providers.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
