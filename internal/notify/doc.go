// Package notify forwards monitor up/down events to external channels.
//
// A [Notifier] receives one [Event] per completed check. [Multi] fans an
// event out to several notifiers, [Transitions] suppresses repeats so only
// state changes get through, and [NATS] and [Slack] deliver events to a NATS
// subject and a Slack incoming webhook respectively.
package notify
