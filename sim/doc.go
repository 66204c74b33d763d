// Package sim provides a discrete-event simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - object.go: the schedulable object lifecycle (register → schedule → fire → reschedule or dispose)
//   - queue.go, queue_set.go: time-ordered queues and the merged "next due" view
//   - simulator.go: the registry and the main loop
//   - event.go, selection.go: event target selection and execution
//
// # Model
//
// A Simulation owns every registered object and indexes it by identity, kind
// and class. Queues only hold identities and fire times; the loop resolves
// the soonest-due identity through the Simulation, advances the clock to its
// fire time and calls Run on the object.
//
// Two object variants exist:
//   - Process: long-lived; runs a host ProcessBehavior and receives events
//     through the optional EventReceiver capability.
//   - Event: one-shot; narrows the registered objects with its criteria,
//     executes its TargetHandler on each target, and disposes itself unless
//     it is periodic or was rescheduled while running.
//
// Periodic scheduling takes any DeltaGenerator; sim/random provides constant,
// uniform, exponential and gaussian generators.
//
// # Ordering
//
// Objects fire in non-decreasing fire-time order. Ties inside a queue resolve
// in insertion order; ties across queues resolve to the queue attached first.
package sim
