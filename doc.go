// Package gostreams provides push-based streams of elements, and the means to share a single
// execution of a stream between many consumers.
//
// A Source pushes elements to an Observer: any number of OnNext calls, followed by at most one
// terminal notification, OnError or OnCompleted. Subscribing returns a Disposable that detaches
// the observer.
//
// A ConnectableSource, such as the one returned by Publish, multicasts a single execution of an
// upstream source to all of its observers, and only starts that execution when Connect is called.
// RefCount turns a ConnectableSource back into a plain Source that connects on demand: it connects
// once enough subscribers have arrived, keeps the connection while any remain, and disconnects,
// immediately or after a grace period, when the last one has left. A subscriber leaves when its
// subscription is disposed or when it receives a terminal notification. Share combines both.
//
// Delayed work is run by a Scheduler. The VirtualScheduler makes time deterministic in tests.
//
// Sources interoperate with lazy, pull-based ProducerFuncs through FromProducer and ToProducer,
// and may be consumed by blocking terminal operations such as Each and Reduce. Terminal
// operations receive a context.CancelCauseFunc; calling it disposes the subscription.
package gostreams
