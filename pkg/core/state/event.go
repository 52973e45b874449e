package state

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// EventType is the tag of an emitted event.
type EventType string

// Event types.
const (
	STXTransferEventType EventType = "stx_transfer_event"
	NFTMintEventType     EventType = "nft_mint_event"
	NFTTransferEventType EventType = "nft_transfer_event"
)

type (
	// Event is a tagged record emitted during transaction execution. Exactly
	// one of the payload fields matching Type is set.
	Event struct {
		Type        EventType
		STXTransfer *STXTransferEvent
		NFTMint     *NFTMintEvent
		NFTTransfer *NFTTransferEvent
	}

	// STXTransferEvent is emitted for every STX movement.
	STXTransferEvent struct {
		Sender    util.Uint160
		Recipient util.Uint160
		Amount    *uint256.Int
	}

	// NFTMintEvent is emitted when a non-fungible token is created.
	NFTMintEvent struct {
		// AssetIdentifier is <contract address>::<asset name>.
		AssetIdentifier string
		Recipient       util.Uint160
		Value           stackitem.Item
	}

	// NFTTransferEvent is emitted when a non-fungible token changes owner.
	NFTTransferEvent struct {
		AssetIdentifier string
		Sender          util.Uint160
		Recipient       util.Uint160
		Value           stackitem.Item
	}
)

// NewSTXTransferEvent creates STX transfer event.
func NewSTXTransferEvent(amount *uint256.Int, from, to util.Uint160) Event {
	return Event{
		Type: STXTransferEventType,
		STXTransfer: &STXTransferEvent{
			Sender:    from,
			Recipient: to,
			Amount:    new(uint256.Int).Set(amount),
		},
	}
}

// NewNFTMintEvent creates NFT mint event.
func NewNFTMintEvent(asset string, value stackitem.Item, recipient util.Uint160) Event {
	return Event{
		Type: NFTMintEventType,
		NFTMint: &NFTMintEvent{
			AssetIdentifier: asset,
			Recipient:       recipient,
			Value:           value,
		},
	}
}

// NewNFTTransferEvent creates NFT transfer event.
func NewNFTTransferEvent(asset string, value stackitem.Item, from, to util.Uint160) Event {
	return Event{
		Type: NFTTransferEventType,
		NFTTransfer: &NFTTransferEvent{
			AssetIdentifier: asset,
			Sender:          from,
			Recipient:       to,
			Value:           value,
		},
	}
}

// EncodeBinary implements the io.Serializable interface.
func (e *Event) EncodeBinary(w *io.BinWriter) {
	w.WriteString(string(e.Type))
	switch e.Type {
	case STXTransferEventType:
		e.STXTransfer.Sender.EncodeBinary(w)
		e.STXTransfer.Recipient.EncodeBinary(w)
		b := e.STXTransfer.Amount.Bytes32()
		w.WriteBytes(b[:])
	case NFTMintEventType:
		w.WriteString(e.NFTMint.AssetIdentifier)
		e.NFTMint.Recipient.EncodeBinary(w)
		stackitem.EncodeBinary(e.NFTMint.Value, w)
	case NFTTransferEventType:
		w.WriteString(e.NFTTransfer.AssetIdentifier)
		e.NFTTransfer.Sender.EncodeBinary(w)
		e.NFTTransfer.Recipient.EncodeBinary(w)
		stackitem.EncodeBinary(e.NFTTransfer.Value, w)
	default:
		w.Err = fmt.Errorf("unknown event type %q", e.Type)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (e *Event) DecodeBinary(r *io.BinReader) {
	e.Type = EventType(r.ReadString())
	switch e.Type {
	case STXTransferEventType:
		ev := new(STXTransferEvent)
		ev.Sender.DecodeBinary(r)
		ev.Recipient.DecodeBinary(r)
		var b [32]byte
		r.ReadBytes(b[:])
		ev.Amount = new(uint256.Int).SetBytes(b[:])
		e.STXTransfer = ev
	case NFTMintEventType:
		ev := new(NFTMintEvent)
		ev.AssetIdentifier = r.ReadString()
		ev.Recipient.DecodeBinary(r)
		ev.Value = stackitem.DecodeBinary(r)
		e.NFTMint = ev
	case NFTTransferEventType:
		ev := new(NFTTransferEvent)
		ev.AssetIdentifier = r.ReadString()
		ev.Sender.DecodeBinary(r)
		ev.Recipient.DecodeBinary(r)
		ev.Value = stackitem.DecodeBinary(r)
		e.NFTTransfer = ev
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("unknown event type %q", e.Type)
		}
	}
}

type (
	stxTransferAux struct {
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
	}
	nftAux struct {
		AssetIdentifier string `json:"asset_identifier"`
		Sender          string `json:"sender,omitempty"`
		Recipient       string `json:"recipient"`
		Value           string `json:"value"`
	}
	eventAux struct {
		Type        EventType       `json:"type"`
		STXTransfer *stxTransferAux `json:"stx_transfer_event,omitempty"`
		NFTMint     *nftAux         `json:"nft_mint_event,omitempty"`
		NFTTransfer *nftAux         `json:"nft_transfer_event,omitempty"`
	}
)

// MarshalJSON implements the json.Marshaler interface.
func (e Event) MarshalJSON() ([]byte, error) {
	aux := eventAux{Type: e.Type}
	switch {
	case e.STXTransfer != nil:
		aux.STXTransfer = &stxTransferAux{
			Sender:    address.Uint160ToString(e.STXTransfer.Sender),
			Recipient: address.Uint160ToString(e.STXTransfer.Recipient),
			Amount:    e.STXTransfer.Amount.ToBig().String(),
		}
	case e.NFTMint != nil:
		aux.NFTMint = &nftAux{
			AssetIdentifier: e.NFTMint.AssetIdentifier,
			Recipient:       address.Uint160ToString(e.NFTMint.Recipient),
			Value:           FormatValue(e.NFTMint.Value),
		}
	case e.NFTTransfer != nil:
		aux.NFTTransfer = &nftAux{
			AssetIdentifier: e.NFTTransfer.AssetIdentifier,
			Sender:          address.Uint160ToString(e.NFTTransfer.Sender),
			Recipient:       address.Uint160ToString(e.NFTTransfer.Recipient),
			Value:           FormatValue(e.NFTTransfer.Value),
		}
	}
	return json.Marshal(aux)
}
