// Package render bootstraps a GPU context for a single window and drives a
// single-buffered clear-screen frame loop on it.
//
// New creates, in order: the instance, the window surface, the logical device
// on the best physical device, the swapchain and its image views, a command
// pool with one reusable command buffer, a clear render pass with one
// framebuffer per image, and one fence plus two semaphores. Draw then runs
// acquire, record, submit and present once per call. Every failure is marked
// with one of the Err* kinds and is fatal to the context.
//
// Only one frame is ever in flight.
package render
