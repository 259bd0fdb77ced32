package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal ABI fragments for the two external contracts the engine talks to.
const (
	erc20ABI = `[
		{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
	]`

	routerABI = `[
		{"inputs":[],"name":"WETH","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"amountOutMin","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"},{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"deadline","type":"uint256"}],"name":"swapExactETHForTokens","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"payable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint256","name":"amountOutMin","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"},{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"deadline","type":"uint256"}],"name":"swapExactTokensForETH","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
	]`
)

// Token is a bound ERC-20 contract instance
type Token struct {
	address common.Address
	backend Backend
	sender  *TxSender
	abi     abi.ABI
}

// NewToken binds an ERC-20 contract at the given address
func NewToken(address common.Address, backend Backend, sender *TxSender) (*Token, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &Token{address: address, backend: backend, sender: sender, abi: parsed}, nil
}

// Address returns the token contract address
func (t *Token) Address() common.Address {
	return t.address
}

// BalanceOf returns the token balance of an account
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Decimals returns the token's decimal places
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

// Symbol returns the token's display symbol
func (t *Token) Symbol(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

// Allowance returns how much the spender may pull from the owner
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Approve submits an approve transaction and returns its hash without waiting
// for it to be mined.
func (t *Token) Approve(ctx context.Context, signer Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	data, err := t.abi.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}
	return t.sender.Send(ctx, signer, t.address, big.NewInt(0), data)
}

// call executes a read-only contract method and unpacks the result
func (t *Token) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	result, err := t.backend.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := t.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}

// Router is a bound AMM router contract instance
type Router struct {
	address common.Address
	backend Backend
	sender  *TxSender
	abi     abi.ABI
}

// NewRouter binds an AMM router contract at the given address
func NewRouter(address common.Address, backend Backend, sender *TxSender) (*Router, error) {
	parsed, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	return &Router{address: address, backend: backend, sender: sender, abi: parsed}, nil
}

// Address returns the router contract address
func (r *Router) Address() common.Address {
	return r.address
}

// WETH reads the wrapped base-asset address from the router
func (r *Router) WETH(ctx context.Context) (common.Address, error) {
	data, err := r.abi.Pack("WETH")
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack WETH data: %w", err)
	}

	result, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.address, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to call WETH: %w", err)
	}

	out, err := r.abi.Unpack("WETH", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack WETH result: %w", err)
	}
	return out[0].(common.Address), nil
}

// GetAmountsOut quotes the output amount for amountIn along the path
func (r *Router) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	data, err := r.abi.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("failed to pack getAmountsOut data: %w", err)
	}

	result, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call getAmountsOut: %w", err)
	}

	out, err := r.abi.Unpack("getAmountsOut", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getAmountsOut result: %w", err)
	}

	amounts := out[0].([]*big.Int)
	if len(amounts) == 0 {
		return nil, fmt.Errorf("getAmountsOut returned no amounts")
	}
	return amounts[len(amounts)-1], nil
}

// SwapExactETHForTokens submits a base-asset-in swap and returns the tx hash
func (r *Router) SwapExactETHForTokens(ctx context.Context, signer Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	data, err := r.abi.Pack("swapExactETHForTokens", amountOutMin, path, to, deadline)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack swapExactETHForTokens data: %w", err)
	}
	return r.sender.Send(ctx, signer, r.address, amountIn, data)
}

// SwapExactTokensForETH submits a token-in swap and returns the tx hash
func (r *Router) SwapExactTokensForETH(ctx context.Context, signer Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	data, err := r.abi.Pack("swapExactTokensForETH", amountIn, amountOutMin, path, to, deadline)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack swapExactTokensForETH data: %w", err)
	}
	return r.sender.Send(ctx, signer, r.address, big.NewInt(0), data)
}
