// Package worker implements the worker side of the sort: a single loop that
// receives tagged requests, answers compare requests with the ordered pair,
// and stops on the exit request without replying.
//
// Workers never see the coordinator's array, only the two values of one pair
// at a time, and keep nothing between requests.
package worker
