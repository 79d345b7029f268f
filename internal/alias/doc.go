// Package alias repoints the logical alias consumers query.
//
// Swap sends a single POST /_aliases carrying the add action for the freshly
// built index and remove actions for every index previously behind the
// alias. Non-2xx responses and acknowledged:false are errors, returned as a
// *SwapError naming the phase that failed. WithSequential splits the update
// into an add request followed by remove requests, for clusters that do not
// accept multi-action updates; the add is confirmed before anything is
// removed.
package alias
