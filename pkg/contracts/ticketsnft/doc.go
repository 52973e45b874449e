/*
Package ticketsnft implements tickets-nft contract: a non-fungible ticket sale
closed at a configured block height.

Anyone can claim a ticket paying a fixed STX price to the contract until the
use-by height is reached, each claim mints the next ticket (u1, u2, ...). The
contract owner (the deployer) can withdraw collected STX at any time. Tickets
can be transferred by their owners.
*/
package ticketsnft
